package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"filemanager/internal/domain"
)

type SharePage struct {
	Records []domain.FileShare `json:"records"`
	Total   int64              `json:"total"`
	Current int                `json:"current"`
	Size    int                `json:"size"`
}

type SharePageParams struct {
	UserID    int64
	Status    *domain.ShareStatus
	ShareType *domain.ShareType
	Current   int
	Size      int
}

// ShareStatistics aggregates a user's shares for the dashboard.
type ShareStatistics struct {
	Total       int64 `json:"total"`
	Active      int64 `json:"active"`
	Canceled    int64 `json:"canceled"`
	Expired     int64 `json:"expired"`
	TotalAccess int64 `json:"total_access"`
}

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, s *domain.FileShare) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ShareRepository) GetByID(ctx context.Context, id int64) (*domain.FileShare, error) {
	var s domain.FileShare
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &s, err
}

// GetActiveByURL resolves a share link token. Only active shares resolve;
// canceled and expired ones are invisible to guests.
func (r *ShareRepository) GetActiveByURL(ctx context.Context, shareURL string) (*domain.FileShare, error) {
	var s domain.FileShare
	err := r.db.WithContext(ctx).
		Where("share_url = ? AND status = ?", shareURL, domain.ShareStatusActive).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *ShareRepository) ListByUser(ctx context.Context, userID int64) ([]domain.FileShare, error) {
	var shares []domain.FileShare
	err := r.db.WithContext(ctx).
		Where("create_user_id = ?", userID).
		Order("create_time DESC").
		Find(&shares).Error
	return shares, err
}

func (r *ShareRepository) PageByUser(ctx context.Context, p SharePageParams) (*SharePage, error) {
	if p.Current < 1 {
		p.Current = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}

	q := r.db.WithContext(ctx).Model(&domain.FileShare{}).
		Where("create_user_id = ?", p.UserID)
	if p.Status != nil {
		q = q.Where("status = ?", *p.Status)
	}
	if p.ShareType != nil {
		q = q.Where("share_type = ?", *p.ShareType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var records []domain.FileShare
	err := q.Order("create_time DESC").
		Offset((p.Current - 1) * p.Size).
		Limit(p.Size).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return &SharePage{Records: records, Total: total, Current: p.Current, Size: p.Size}, nil
}

func (r *ShareRepository) Update(ctx context.Context, s *domain.FileShare) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// UpdateStatus is owner-scoped when userID > 0; the lazy expiry transition
// passes userID 0 because a guest triggers it.
func (r *ShareRepository) UpdateStatus(ctx context.Context, id, userID int64, status domain.ShareStatus) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.FileShare{}).Where("id = ?", id)
	if userID > 0 {
		q = q.Where("create_user_id = ?", userID)
	}
	res := q.Updates(map[string]any{"status": status, "update_time": time.Now()})
	return res.RowsAffected > 0, res.Error
}

// IncrementAccessCount is a single atomic UPDATE; concurrent guests never
// lose counts.
func (r *ShareRepository) IncrementAccessCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.FileShare{}).
		Where("id = ?", id).
		UpdateColumn("access_count", gorm.Expr("access_count + 1")).Error
}

func (r *ShareRepository) Statistics(ctx context.Context, userID int64) (*ShareStatistics, error) {
	var stats ShareStatistics

	type row struct {
		Status domain.ShareStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.FileShare{}).
		Select("status, COUNT(*) AS n").
		Where("create_user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		stats.Total += rw.N
		switch rw.Status {
		case domain.ShareStatusActive:
			stats.Active = rw.N
		case domain.ShareStatusCanceled:
			stats.Canceled = rw.N
		case domain.ShareStatusExpired:
			stats.Expired = rw.N
		}
	}

	err = r.db.WithContext(ctx).Model(&domain.FileShare{}).
		Where("create_user_id = ?", userID).
		Select("COALESCE(SUM(access_count), 0)").
		Scan(&stats.TotalAccess).Error
	return &stats, err
}
