// Package token generates the random identifiers used by shares and
// storage: link tokens, extraction codes and collision-safe file names.
// The Source interface exists so tests can supply deterministic values.
package token

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

type Source interface {
	// ShareToken returns the 16-character lowercase-hex token used in a
	// share link.
	ShareToken() string
	// ExtractCode returns a 4-digit numeric extraction code.
	ExtractCode() string
	// StorageName returns a storage-unique file name carrying the given
	// extension (extension may be empty).
	StorageName(ext string) string
}

// Random is the production Source, backed by uuid and math/rand.
type Random struct{}

func NewRandom() *Random { return &Random{} }

func (*Random) ShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func (*Random) ExtractCode() string {
	return fmt.Sprintf("%04d", rand.Intn(9000)+1000)
}

func (*Random) StorageName(ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	if ext != "" {
		return name + "." + strings.TrimPrefix(ext, ".")
	}
	return name
}
