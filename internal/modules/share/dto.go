package share

import "filemanager/internal/domain"

// CreateRequest shares a single file or folder. ExpireType is the preset
// the client picked: 0 never, 1 one day, 2 seven days, 3 thirty days,
// 4 a custom number of days carried in ExpireDays.
type CreateRequest struct {
	ShareTitle    string `json:"shareTitle"`
	ShareType     int    `json:"shareType" binding:"required,oneof=1 2"`
	FileID        int64  `json:"fileId"`
	FolderID      int64  `json:"folderId"`
	ExpireType    int    `json:"expireType" binding:"min=0,max=4"`
	ExpireDays    int    `json:"expireDays"`
	NeedCode      *bool  `json:"needCode"`
	AllowDownload *bool  `json:"allowDownload"`
	AccessLimit   int64  `json:"accessLimit"`
	Remark        string `json:"remark"`
}

// QuickRequest is the optional body of the one-click share endpoints.
type QuickRequest struct {
	ExpireType    *int  `json:"expireType"`
	ExpireDays    int   `json:"expireDays"`
	NeedCode      *bool `json:"needCode"`
	AllowDownload *bool `json:"allowDownload"`
}

type CreateResponse struct {
	ShareID   int64  `json:"shareId"`
	ShareURL  string `json:"shareUrl"`
	ShareCode string `json:"shareCode,omitempty"`
	NeedCode  bool   `json:"needCode"`
}

type UpdateRequest struct {
	ID            int64   `json:"id" binding:"required"`
	ShareTitle    *string `json:"shareTitle"`
	ExpireType    *int    `json:"expireType"`
	ExpireDays    int     `json:"expireDays"`
	NeedCode      *bool   `json:"needCode"`
	AllowDownload *bool   `json:"allowDownload"`
	AccessLimit   *int64  `json:"accessLimit"`
	Remark        *string `json:"remark"`
}

type VerifyRequest struct {
	ShareCode   string `json:"shareCode" binding:"required"`
	ExtractCode string `json:"extractCode" binding:"required"`
}

type BatchRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// InfoResponse is what a guest sees before entering the extraction code.
type InfoResponse struct {
	ShareTitle    string           `json:"share_title"`
	ShareType     domain.ShareType `json:"share_type"`
	NeedCode      bool             `json:"need_code"`
	AllowDownload bool             `json:"allow_download"`
	CreateTime    string           `json:"create_time"`
	ExpireTime    string           `json:"expire_time,omitempty"`
}

// AccessResponse is the payload after a successful share access.
type AccessResponse struct {
	Share  *domain.FileShare  `json:"share"`
	File   *domain.FileInfo   `json:"file,omitempty"`
	Folder *domain.FileFolder `json:"folder,omitempty"`
}

// ContentResponse lists one level of a shared folder.
type ContentResponse struct {
	Folders []domain.FileFolder `json:"folders"`
	Files   []domain.FileInfo   `json:"files"`
}

type SaveRequest struct {
	ShareCode      string  `json:"shareCode" binding:"required"`
	ExtractCode    string  `json:"extractCode"`
	TargetFolderID int64   `json:"targetFolderId"`
	FileIDs        []int64 `json:"fileIds"`
	FolderIDs      []int64 `json:"folderIds"`
}

type SaveItemResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type SaveResponse struct {
	Files   []SaveItemResult `json:"files"`
	Folders []SaveItemResult `json:"folders"`
}
