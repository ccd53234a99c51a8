package domain

import "time"

// ShareStatus values. Canceled and expired are terminal; expiry is applied
// lazily when a share is validated, never by a background job.
type ShareStatus int

const (
	ShareStatusActive   ShareStatus = 1
	ShareStatusCanceled ShareStatus = 2
	ShareStatusExpired  ShareStatus = 3
)

// ShareType distinguishes file shares from folder shares.
type ShareType int

const (
	ShareTypeFile   ShareType = 1
	ShareTypeFolder ShareType = 2
)

// ExpireType of a share. Days requires ExpireDays > 0 and a computed
// ExpireTime; Never keeps ExpireTime nil.
type ExpireType int

const (
	ExpireNever ExpireType = 0
	ExpireDays  ExpireType = 1
)

// FileShare is a shareable link to a file or folder. ShareURL is the
// 16-hex-character token in the public link; ShareCode is the optional
// extraction code guests must present when NeedCode is set.
type FileShare struct {
	ID            int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShareTitle    string      `gorm:"column:share_title" json:"share_title"`
	ShareType     ShareType   `gorm:"column:share_type" json:"share_type"`
	FileID        int64       `gorm:"column:file_id" json:"file_id,omitempty"`
	FolderID      int64       `gorm:"column:folder_id" json:"folder_id,omitempty"`
	CreateUserID  int64       `gorm:"column:create_user_id;index" json:"create_user_id"`
	ShareURL      string      `gorm:"column:share_url;uniqueIndex" json:"share_url"`
	ShareCode     string      `gorm:"column:share_code" json:"-"`
	ExpireType    ExpireType  `gorm:"column:expire_type" json:"expire_type"`
	ExpireDays    int         `gorm:"column:expire_days" json:"expire_days,omitempty"`
	ExpireTime    *time.Time  `gorm:"column:expire_time" json:"expire_time,omitempty"`
	NeedCode      bool        `gorm:"column:need_code" json:"need_code"`
	AllowDownload bool        `gorm:"column:allow_download" json:"allow_download"`
	AccessLimit   int64       `gorm:"column:access_limit" json:"access_limit"`
	AccessCount   int64       `gorm:"column:access_count" json:"access_count"`
	Status        ShareStatus `gorm:"column:status;default:1" json:"status"`
	Remark        string      `gorm:"column:remark" json:"remark,omitempty"`
	CreateTime    time.Time   `gorm:"column:create_time" json:"create_time"`
	UpdateTime    time.Time   `gorm:"column:update_time" json:"update_time"`
}

func (FileShare) TableName() string { return "file_share" }
