package folder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filemanager/internal/domain"
	"filemanager/internal/pkg/filetype"
	"filemanager/internal/repository"
)

type fileDeleter interface {
	PermanentDelete(ctx context.Context, fileID, userID int64) error
}

// Service manages the folder tree. Folder paths are materialized ancestor
// chains, so subtree queries are a single LIKE and moves rewrite prefixes.
type Service struct {
	folders *repository.FolderRepository
	files   *repository.FileRepository
	deleter fileDeleter
}

func NewService(folders *repository.FolderRepository, files *repository.FileRepository, deleter fileDeleter) *Service {
	return &Service{folders: folders, files: files, deleter: deleter}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*domain.FileFolder, error) {
	name := filetype.SanitizeName(req.FolderName)
	if name == "" {
		return nil, ErrInvalidName
	}

	path := "/"
	if req.ParentID != domain.RootFolderID {
		parent, err := s.folders.GetOwned(ctx, req.ParentID, userID)
		if err != nil {
			return nil, s.mapNotFound(err)
		}
		path = childPath(parent)
	}

	now := time.Now()
	f := &domain.FileFolder{
		FolderName:   name,
		ParentID:     req.ParentID,
		FolderPath:   path,
		CreateUserID: userID,
		Status:       domain.FileStatusNormal,
		Remark:       req.Remark,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.folders.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Content lists a folder's child folders and the files directly inside it.
func (s *Service) Content(ctx context.Context, folderID, userID int64) (*ContentResponse, error) {
	if folderID != domain.RootFolderID {
		if _, err := s.folders.GetOwned(ctx, folderID, userID); err != nil {
			return nil, s.mapNotFound(err)
		}
	}

	folders, err := s.folders.ListByParent(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}
	return &ContentResponse{Folders: folders, Files: files}, nil
}

func (s *Service) Get(ctx context.Context, folderID, userID int64) (*domain.FileFolder, error) {
	f, err := s.folders.GetOwned(ctx, folderID, userID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return f, nil
}

// GetRecord returns any live folder without an ownership check, for share
// resolution.
func (s *Service) GetRecord(ctx context.Context, folderID int64) (*domain.FileFolder, error) {
	f, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return f, nil
}

func (s *Service) Subtree(ctx context.Context, f *domain.FileFolder) ([]domain.FileFolder, error) {
	return s.folders.ListSubtree(ctx, f)
}

func (s *Service) Rename(ctx context.Context, folderID, userID int64, newName string) error {
	name := filetype.SanitizeName(newName)
	if name == "" {
		return ErrInvalidName
	}
	ok, err := s.folders.Rename(ctx, folderID, userID, name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFolderNotFound
	}
	return nil
}

// Move re-parents the folder. The target must not be the folder itself or
// any of its descendants, or the subtree would detach from the root.
func (s *Service) Move(ctx context.Context, folderID, userID, targetParentID int64) error {
	f, err := s.folders.GetOwned(ctx, folderID, userID)
	if err != nil {
		return s.mapNotFound(err)
	}
	if targetParentID == f.ID {
		return ErrInvalidMove
	}

	newPath := "/"
	if targetParentID != domain.RootFolderID {
		target, err := s.folders.GetOwned(ctx, targetParentID, userID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if strings.HasPrefix(target.FolderPath, childPath(f)) {
			return ErrInvalidMove
		}
		newPath = childPath(target)
	}

	return s.folders.Move(ctx, f, targetParentID, newPath)
}

func (s *Service) Favorite(ctx context.Context, folderID, userID int64, favorite bool) error {
	ok, err := s.folders.UpdateFavorite(ctx, folderID, userID, favorite)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFolderNotFound
	}
	return nil
}

// SoftDelete recycles the folder, its whole subtree and every file inside.
func (s *Service) SoftDelete(ctx context.Context, folderID, userID int64) error {
	f, err := s.folders.GetOwned(ctx, folderID, userID)
	if err != nil {
		return s.mapNotFound(err)
	}
	subtree, err := s.folders.ListSubtree(ctx, f)
	if err != nil {
		return err
	}

	ids := folderIDs(f, subtree)
	now := time.Now()
	if _, err := s.folders.UpdateStatusBulk(ctx, ids, userID, domain.FileStatusNormal, domain.FileStatusRecycled, &now); err != nil {
		return err
	}
	_, err = s.files.UpdateStatusByFolders(ctx, ids, userID, domain.FileStatusNormal, domain.FileStatusRecycled, &now)
	return err
}

// Restore brings a recycled folder, its subtree and its files back.
func (s *Service) Restore(ctx context.Context, folderID, userID int64) error {
	f, err := s.folders.GetOwned(ctx, folderID, userID, domain.FileStatusRecycled)
	if err != nil {
		return s.mapNotFound(err)
	}
	subtree, err := s.folders.ListSubtree(ctx, f, domain.FileStatusRecycled)
	if err != nil {
		return err
	}

	ids := folderIDs(f, subtree)
	if _, err := s.folders.UpdateStatusBulk(ctx, ids, userID, domain.FileStatusRecycled, domain.FileStatusNormal, nil); err != nil {
		return err
	}
	_, err = s.files.UpdateStatusByFolders(ctx, ids, userID, domain.FileStatusRecycled, domain.FileStatusNormal, nil)
	return err
}

// PermanentDelete removes the folder and subtree for good. Every contained
// file goes through the file service so blobs and quota stay consistent.
func (s *Service) PermanentDelete(ctx context.Context, folderID, userID int64) error {
	f, err := s.folders.GetOwned(ctx, folderID, userID, domain.FileStatusNormal, domain.FileStatusRecycled)
	if err != nil {
		return s.mapNotFound(err)
	}
	subtree, err := s.folders.ListSubtree(ctx, f, domain.FileStatusNormal, domain.FileStatusRecycled)
	if err != nil {
		return err
	}
	ids := folderIDs(f, subtree)

	contained, err := s.files.ListByFolders(ctx, ids, userID, domain.FileStatusNormal, domain.FileStatusRecycled)
	if err != nil {
		return err
	}
	for _, file := range contained {
		if err := s.deleter.PermanentDelete(ctx, file.ID, userID); err != nil {
			return err
		}
	}

	now := time.Now()
	if _, err := s.folders.UpdateStatusBulk(ctx, ids, userID, domain.FileStatusRecycled, domain.FileStatusDeleted, &now); err != nil {
		return err
	}
	_, err = s.folders.UpdateStatusBulk(ctx, ids, userID, domain.FileStatusNormal, domain.FileStatusDeleted, &now)
	return err
}

func childPath(f *domain.FileFolder) string {
	return f.FolderPath + fmt.Sprint(f.ID) + "/"
}

func folderIDs(root *domain.FileFolder, subtree []domain.FileFolder) []int64 {
	ids := make([]int64, 0, len(subtree)+1)
	ids = append(ids, root.ID)
	for _, f := range subtree {
		ids = append(ids, f.ID)
	}
	return ids
}

func (s *Service) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFolderNotFound
	}
	return err
}
