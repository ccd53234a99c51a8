package share

import "errors"

var (
	ErrShareNotFound    = errors.New("share not found")
	ErrShareExpired     = errors.New("share has expired")
	ErrShareCodeError   = errors.New("extraction code is incorrect")
	ErrShareAccessLimit = errors.New("share access limit reached")
	ErrDownloadDenied   = errors.New("downloads are disabled for this share")
	ErrTargetNotFound   = errors.New("shared target not found")
	ErrNotInShare       = errors.New("content does not belong to this share")
	ErrNotFolderShare   = errors.New("share does not point at a folder")
)
