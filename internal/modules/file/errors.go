package file

import "errors"

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrFolderNotFound = errors.New("target folder not found")
	ErrStorageFull    = errors.New("storage quota exceeded")
	ErrEmptyFile      = errors.New("file is empty")
	ErrInvalidName    = errors.New("invalid file name")
)
