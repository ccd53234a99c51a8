package file

import (
	"io"

	"filemanager/internal/domain"
)

// UploadInput carries one incoming file. Size must be the exact byte count;
// the quota check runs before any bytes are written.
type UploadInput struct {
	FileName string
	Size     int64
	FolderID int64
	Reader   io.Reader
}

type RapidUploadRequest struct {
	FileMD5  string `json:"fileMd5" binding:"required,len=32"`
	FileName string `json:"fileName" binding:"required,max=255"`
	FolderID int64  `json:"folderId"`
}

type MoveRequest struct {
	TargetFolderID int64 `json:"targetFolderId"`
}

type CopyRequest struct {
	TargetFolderID int64 `json:"targetFolderId"`
}

type RenameRequest struct {
	NewFileName string `json:"newFileName" binding:"required,max=255"`
}

type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

type BatchRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// BatchItemResult reports the outcome for a single id of a batch operation.
type BatchItemResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UploadResult is one entry of a batch upload response.
type UploadResult struct {
	FileName string           `json:"file_name"`
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Record   *domain.FileInfo `json:"record,omitempty"`
}
