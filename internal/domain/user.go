package domain

import "time"

type UserStatus int

const (
	UserDisabled UserStatus = 0
	UserActive   UserStatus = 1
)

// User owns files, folders and shares. StorageUsed is maintained by the
// file service as bytes are added and purged and must never exceed
// StorageLimit.
type User struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	Nickname     string     `gorm:"column:nickname" json:"nickname,omitempty"`
	Email        string     `gorm:"column:email" json:"email,omitempty"`
	Status       UserStatus `gorm:"column:status;default:1" json:"status"`
	StorageLimit int64      `gorm:"column:storage_limit" json:"storage_limit"`
	StorageUsed  int64      `gorm:"column:storage_used" json:"storage_used"`
	CreateTime   time.Time  `gorm:"column:create_time" json:"create_time"`
	UpdateTime   time.Time  `gorm:"column:update_time" json:"update_time"`
}

func (User) TableName() string { return "sys_user" }
