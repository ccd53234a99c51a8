package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"filemanager/internal/domain"
)

// FilePage is a page of file records plus the unfiltered total.
type FilePage struct {
	Records []domain.FileInfo `json:"records"`
	Total   int64             `json:"total"`
	Current int               `json:"current"`
	Size    int               `json:"size"`
}

// FilePageParams filters the paged listing. Zero values mean "no filter"
// except FolderID, which always scopes the listing.
type FilePageParams struct {
	UserID   int64
	FolderID int64
	FileName string
	FileType *domain.FileCategory
	Current  int
	Size     int
}

// FileRepository persists file records. Reads are status-scoped here, not
// in the domain model: listing methods only ever return normal records
// unless the method says otherwise.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// DB exposes the handle so services can run multi-repo transactions.
func (r *FileRepository) DB() *gorm.DB { return r.db }

func (r *FileRepository) Create(ctx context.Context, f *domain.FileInfo) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// GetByID returns any record that is not hard-deleted, regardless of owner.
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*domain.FileInfo, error) {
	var f domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, domain.FileStatusDeleted).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

// GetOwned returns the record only when userID owns it and it is in one of
// the given statuses.
func (r *FileRepository) GetOwned(ctx context.Context, id, userID int64, statuses ...domain.FileStatus) (*domain.FileInfo, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND create_user_id = ?", id, userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	} else {
		q = q.Where("status <> ?", domain.FileStatusDeleted)
	}

	var f domain.FileInfo
	err := q.First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID, userID int64) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("folder_id = ? AND create_user_id = ? AND status = ?", folderID, userID, domain.FileStatusNormal).
		Order("create_time DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Page(ctx context.Context, p FilePageParams) (*FilePage, error) {
	if p.Current < 1 {
		p.Current = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}

	q := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("create_user_id = ? AND status = ?", p.UserID, domain.FileStatusNormal).
		Where("folder_id = ?", p.FolderID)
	if p.FileName != "" {
		q = q.Where("file_name LIKE ?", "%"+p.FileName+"%")
	}
	if p.FileType != nil {
		q = q.Where("file_type = ?", *p.FileType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var records []domain.FileInfo
	err := q.Order("create_time DESC").
		Offset((p.Current - 1) * p.Size).
		Limit(p.Size).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return &FilePage{Records: records, Total: total, Current: p.Current, Size: p.Size}, nil
}

func (r *FileRepository) Search(ctx context.Context, keyword string, userID int64) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("create_user_id = ? AND status = ?", userID, domain.FileStatusNormal).
		Where("file_name LIKE ? OR original_name LIKE ?", "%"+keyword+"%", "%"+keyword+"%").
		Order("create_time DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) ListFavorites(ctx context.Context, userID int64) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("create_user_id = ? AND status = ? AND is_favorite = ?", userID, domain.FileStatusNormal, true).
		Order("update_time DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) ListTrash(ctx context.Context, userID int64) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("create_user_id = ? AND status = ?", userID, domain.FileStatusRecycled).
		Order("delete_time DESC").
		Find(&files).Error
	return files, err
}

// ListByFolders returns a user's records across a set of folders, scoped to
// the given statuses. Used by recursive folder operations.
func (r *FileRepository) ListByFolders(ctx context.Context, folderIDs []int64, userID int64, statuses ...domain.FileStatus) ([]domain.FileInfo, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("folder_id IN ? AND create_user_id = ?", folderIDs, userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var files []domain.FileInfo
	err := q.Find(&files).Error
	return files, err
}

// UpdateStatusByFolders transitions every matching record in the given
// folders, guarded by the expected current status.
func (r *FileRepository) UpdateStatusByFolders(ctx context.Context, folderIDs []int64, userID int64, from, to domain.FileStatus, deleteTime *time.Time) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("folder_id IN ? AND create_user_id = ? AND status = ?", folderIDs, userID, from).
		Updates(map[string]any{
			"status":      to,
			"delete_time": deleteTime,
			"update_time": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// FindByMD5 finds any live record carrying the hash, regardless of owner.
// Used by the rapid-upload path.
func (r *FileRepository) FindByMD5(ctx context.Context, md5 string) (*domain.FileInfo, error) {
	var f domain.FileInfo
	err := r.db.WithContext(ctx).
		Where("file_md5 = ? AND status = ?", md5, domain.FileStatusNormal).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

// CountByPath counts live records that reference the same blob, excluding
// the given record. A blob may only be purged when this reaches zero.
func (r *FileRepository) CountByPath(ctx context.Context, path string, excludeID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("file_path = ? AND id <> ? AND status <> ?", path, excludeID, domain.FileStatusDeleted).
		Count(&n).Error
	return n, err
}

// UpdateStatus transitions a record between lifecycle states. The update is
// guarded by the expected current status so concurrent transitions lose
// cleanly instead of double-applying.
func (r *FileRepository) UpdateStatus(ctx context.Context, id, userID int64, from, to domain.FileStatus, deleteTime *time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, from).
		Updates(map[string]any{
			"status":      to,
			"delete_time": deleteTime,
			"update_time": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *FileRepository) UpdateFolder(ctx context.Context, id, userID, folderID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, domain.FileStatusNormal).
		Updates(map[string]any{"folder_id": folderID, "update_time": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *FileRepository) UpdateName(ctx context.Context, id, userID int64, name, ext, mime string, category domain.FileCategory) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, domain.FileStatusNormal).
		Updates(map[string]any{
			"file_name":   name,
			"file_ext":    ext,
			"mime_type":   mime,
			"file_type":   category,
			"update_time": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *FileRepository) UpdateFavorite(ctx context.Context, id, userID int64, favorite bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ? AND create_user_id = ? AND status = ?", id, userID, domain.FileStatusNormal).
		Updates(map[string]any{"is_favorite": favorite, "update_time": time.Now()})
	return res.RowsAffected > 0, res.Error
}

// IncrementDownloadCount and IncrementPreviewCount are atomic in SQL, never
// read-modify-write.
func (r *FileRepository) IncrementDownloadCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *FileRepository) IncrementPreviewCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.FileInfo{}).
		Where("id = ?", id).
		UpdateColumn("preview_count", gorm.Expr("preview_count + 1")).Error
}
