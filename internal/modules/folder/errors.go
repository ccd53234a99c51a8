package folder

import "errors"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrInvalidMove    = errors.New("cannot move a folder into its own subtree")
	ErrInvalidName    = errors.New("invalid folder name")
)
