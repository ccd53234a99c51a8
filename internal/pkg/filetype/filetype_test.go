package filetype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"filemanager/internal/domain"
)

func TestExt(t *testing.T) {
	assert.Equal(t, "pdf", Ext("report.pdf"))
	assert.Equal(t, "gz", Ext("archive.tar.gz"))
	assert.Equal(t, "jpg", Ext("PHOTO.JPG"))
	assert.Equal(t, "", Ext("Makefile"))
	assert.Equal(t, "", Ext("trailing."))
}

func TestNameWithoutExt(t *testing.T) {
	assert.Equal(t, "report", NameWithoutExt("report.pdf"))
	assert.Equal(t, "archive.tar", NameWithoutExt("archive.tar.gz"))
	assert.Equal(t, "Makefile", NameWithoutExt("Makefile"))
}

func TestMimeByExt(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeByExt("pdf"))
	assert.Equal(t, "application/pdf", MimeByExt(".PDF"))
	assert.Equal(t, "image/jpeg", MimeByExt("jpeg"))
	assert.Equal(t, "application/octet-stream", MimeByExt("xyz"))
	assert.Equal(t, "application/octet-stream", MimeByExt(""))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, domain.CategoryImage, CategoryOf("pic.png"))
	assert.Equal(t, domain.CategoryDocument, CategoryOf("notes.md"))
	assert.Equal(t, domain.CategoryVideo, CategoryOf("movie.mkv"))
	assert.Equal(t, domain.CategoryAudio, CategoryOf("song.flac"))
	assert.Equal(t, domain.CategoryArchive, CategoryOf("bundle.7z"))
	assert.Equal(t, domain.CategoryExecutable, CategoryOf("setup.exe"))
	assert.Equal(t, domain.CategoryCode, CategoryOf("main.go"))
	assert.Equal(t, domain.CategoryOther, CategoryOf("data.unknown"))
}

func TestPreviewType(t *testing.T) {
	assert.Equal(t, "image", PreviewType("a.png"))
	assert.Equal(t, "text", PreviewType("a.txt"))
	assert.Equal(t, "text", PreviewType("a.json"))
	assert.Equal(t, "pdf", PreviewType("a.pdf"))
	assert.Equal(t, "audio", PreviewType("a.mp3"))
	assert.Equal(t, "video", PreviewType("a.mp4"))
	assert.Equal(t, "none", PreviewType("a.exe"))
}

func TestIsPreviewableAndEditable(t *testing.T) {
	assert.True(t, IsPreviewable("photo.jpg"))
	assert.True(t, IsPreviewable("doc.pdf"))
	assert.True(t, IsPreviewable("main.py"))
	assert.False(t, IsPreviewable("setup.msi"))

	assert.True(t, IsEditable("notes.txt"))
	assert.True(t, IsEditable("config.json"))
	assert.False(t, IsEditable("photo.jpg"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a_b_c.txt", SanitizeName(`a/b\c.txt`))
	assert.Equal(t, "what_.doc", SanitizeName("what?.doc"))
	assert.Equal(t, "plain.txt", SanitizeName("plain.txt"))
}
