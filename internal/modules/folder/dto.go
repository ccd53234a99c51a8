package folder

import "filemanager/internal/domain"

type CreateRequest struct {
	FolderName string `json:"folderName" binding:"required,max=255"`
	ParentID   int64  `json:"parentId"`
	Remark     string `json:"remark"`
}

type RenameRequest struct {
	NewName string `json:"newName" binding:"required,max=255"`
}

type MoveRequest struct {
	TargetParentID int64 `json:"targetParentId"`
}

type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// ContentResponse is a folder listing: child folders plus the files directly
// inside it.
type ContentResponse struct {
	Folders []domain.FileFolder `json:"folders"`
	Files   []domain.FileInfo   `json:"files"`
}
