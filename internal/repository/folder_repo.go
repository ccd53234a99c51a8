package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"filemanager/internal/domain"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, f *domain.FileFolder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.FileFolder, error) {
	var f domain.FileFolder
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.FileStatusNormal).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *FolderRepository) GetOwned(ctx context.Context, id, userID int64, statuses ...domain.FileStatus) (*domain.FileFolder, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND create_user_id = ?", id, userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	} else {
		q = q.Where("status = ?", domain.FileStatusNormal)
	}

	var f domain.FileFolder
	err := q.First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *FolderRepository) ListByParent(ctx context.Context, parentID, userID int64) ([]domain.FileFolder, error) {
	var folders []domain.FileFolder
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND create_user_id = ? AND status = ?", parentID, userID, domain.FileStatusNormal).
		Order("folder_name ASC").
		Find(&folders).Error
	return folders, err
}

// ListSubtree returns every descendant of the folder in the given statuses
// (live only when none given), using the materialized path prefix.
func (r *FolderRepository) ListSubtree(ctx context.Context, folder *domain.FileFolder, statuses ...domain.FileStatus) ([]domain.FileFolder, error) {
	prefix := folder.FolderPath + fmt.Sprint(folder.ID) + "/"
	q := r.db.WithContext(ctx).Where("folder_path LIKE ?", prefix+"%")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	} else {
		q = q.Where("status = ?", domain.FileStatusNormal)
	}
	var folders []domain.FileFolder
	err := q.Find(&folders).Error
	return folders, err
}

func (r *FolderRepository) Rename(ctx context.Context, id, userID int64, name string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileFolder{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, domain.FileStatusNormal).
		Updates(map[string]any{"folder_name": name, "update_time": time.Now()})
	return res.RowsAffected > 0, res.Error
}

// Move re-parents the folder and rewrites the materialized paths of the
// whole subtree in one statement per level of the old prefix.
func (r *FolderRepository) Move(ctx context.Context, folder *domain.FileFolder, newParentID int64, newPath string) error {
	oldPrefix := folder.FolderPath + fmt.Sprint(folder.ID) + "/"
	newPrefix := newPath + fmt.Sprint(folder.ID) + "/"

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.FileFolder{}).
			Where("id = ?", folder.ID).
			Updates(map[string]any{
				"parent_id":   newParentID,
				"folder_path": newPath,
				"update_time": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		var descendants []domain.FileFolder
		if err := tx.Where("folder_path LIKE ?", oldPrefix+"%").Find(&descendants).Error; err != nil {
			return err
		}
		for _, d := range descendants {
			rewritten := newPrefix + strings.TrimPrefix(d.FolderPath, oldPrefix)
			if err := tx.Model(&domain.FileFolder{}).
				Where("id = ?", d.ID).
				Update("folder_path", rewritten).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FolderRepository) UpdateFavorite(ctx context.Context, id, userID int64, favorite bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileFolder{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, domain.FileStatusNormal).
		Updates(map[string]any{"is_favorite": favorite, "update_time": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *FolderRepository) UpdateStatus(ctx context.Context, id, userID int64, from, to domain.FileStatus, deleteTime *time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileFolder{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, from).
		Updates(map[string]any{
			"status":      to,
			"delete_time": deleteTime,
			"update_time": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// UpdateStatusBulk transitions a set of folders at once, guarded by the
// expected current status. Returns the number of rows that moved.
func (r *FolderRepository) UpdateStatusBulk(ctx context.Context, ids []int64, userID int64, from, to domain.FileStatus, deleteTime *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.FileFolder{}).
		Where("id IN ? AND create_user_id = ? AND status = ?", ids, userID, from).
		Updates(map[string]any{
			"status":      to,
			"delete_time": deleteTime,
			"update_time": time.Now(),
		})
	return res.RowsAffected, res.Error
}
