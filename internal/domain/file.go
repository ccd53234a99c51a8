package domain

import "time"

// FileStatus tracks the recycle-bin lifecycle of a file record.
type FileStatus int

const (
	FileStatusNormal   FileStatus = 1
	FileStatusRecycled FileStatus = 2
	FileStatusDeleted  FileStatus = 3
)

// FileCategory is the coarse classification derived from the extension.
type FileCategory int

const (
	CategoryOther      FileCategory = 0
	CategoryImage      FileCategory = 1
	CategoryDocument   FileCategory = 2
	CategoryVideo      FileCategory = 3
	CategoryAudio      FileCategory = 4
	CategoryArchive    FileCategory = 5
	CategoryExecutable FileCategory = 6
	CategoryCode       FileCategory = 7
)

// StorageType identifies which backend holds the blob.
type StorageType int

const (
	StorageLocal StorageType = 0
	StorageS3    StorageType = 1
)

// FileInfo is a stored file's metadata. Several records may point at the
// same blob (file_path) after a rapid upload; each keeps its own name,
// folder and owner.
type FileInfo struct {
	ID            int64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FileName      string       `gorm:"column:file_name" json:"file_name"`
	OriginalName  string       `gorm:"column:original_name" json:"original_name"`
	FilePath      string       `gorm:"column:file_path" json:"-"`
	FileURL       string       `gorm:"column:file_url" json:"file_url"`
	FileExt       string       `gorm:"column:file_ext" json:"file_ext"`
	FileSize      int64        `gorm:"column:file_size" json:"file_size"`
	FileType      FileCategory `gorm:"column:file_type" json:"file_type"`
	MimeType      string       `gorm:"column:mime_type" json:"mime_type"`
	StorageType   StorageType  `gorm:"column:storage_type" json:"storage_type"`
	FolderID      int64        `gorm:"column:folder_id;index" json:"folder_id"`
	CreateUserID  int64        `gorm:"column:create_user_id;index" json:"create_user_id"`
	FileMD5       string       `gorm:"column:file_md5;index" json:"file_md5"`
	Status        FileStatus   `gorm:"column:status;default:1" json:"status"`
	IsFavorite    bool         `gorm:"column:is_favorite" json:"is_favorite"`
	DownloadCount int64        `gorm:"column:download_count" json:"download_count"`
	PreviewCount  int64        `gorm:"column:preview_count" json:"preview_count"`
	Remark        string       `gorm:"column:remark" json:"remark,omitempty"`
	CreateTime    time.Time    `gorm:"column:create_time" json:"create_time"`
	UpdateTime    time.Time    `gorm:"column:update_time" json:"update_time"`
	DeleteTime    *time.Time   `gorm:"column:delete_time" json:"delete_time,omitempty"`
}

func (FileInfo) TableName() string { return "file_info" }
