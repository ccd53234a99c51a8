package domain

import "time"

// RootFolderID is the implicit tree root; it has no stored row.
const RootFolderID int64 = 0

// FileFolder is a node in a user's folder tree. FolderPath is the
// materialized chain of ancestor ids, e.g. "/1/5/" for a folder whose
// parent is 5 and grandparent is 1.
type FileFolder struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FolderName   string     `gorm:"column:folder_name" json:"folder_name"`
	ParentID     int64      `gorm:"column:parent_id;index" json:"parent_id"`
	FolderPath   string     `gorm:"column:folder_path" json:"folder_path"`
	CreateUserID int64      `gorm:"column:create_user_id;index" json:"create_user_id"`
	IsFavorite   bool       `gorm:"column:is_favorite" json:"is_favorite"`
	IsPublic     bool       `gorm:"column:is_public" json:"is_public"`
	Status       FileStatus `gorm:"column:status;default:1" json:"status"`
	Remark       string     `gorm:"column:remark" json:"remark,omitempty"`
	CreateTime   time.Time  `gorm:"column:create_time" json:"create_time"`
	UpdateTime   time.Time  `gorm:"column:update_time" json:"update_time"`
	DeleteTime   *time.Time `gorm:"column:delete_time" json:"delete_time,omitempty"`
}

func (FileFolder) TableName() string { return "file_folder" }
