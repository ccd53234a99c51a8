package file

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"filemanager/internal/domain"
	"filemanager/internal/pkg/filetype"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
	"filemanager/internal/storage"
)

// Service owns the file lifecycle: upload, listing, recycle bin, blob
// bookkeeping. Blobs are shared between records after rapid uploads and
// copies never happen blindly: a blob is purged only when its last record
// goes away.
type Service struct {
	files   *repository.FileRepository
	folders *repository.FolderRepository
	users   *repository.UserRepository
	store   storage.Backend
	tokens  token.Source
}

func NewService(
	files *repository.FileRepository,
	folders *repository.FolderRepository,
	users *repository.UserRepository,
	store storage.Backend,
	tokens token.Source,
) *Service {
	return &Service{files: files, folders: folders, users: users, store: store, tokens: tokens}
}

// Upload stores the blob and inserts the record plus the quota charge in one
// transaction. The blob is written first and removed again if the
// transaction fails, so a crash never leaks quota.
func (s *Service) Upload(ctx context.Context, userID int64, in UploadInput) (*domain.FileInfo, error) {
	if in.Size <= 0 {
		return nil, ErrEmptyFile
	}
	name := filetype.SanitizeName(in.FileName)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.requireFolder(ctx, in.FolderID, userID); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, userID, in.Size); err != nil {
		return nil, err
	}

	ext := filetype.Ext(name)
	path := s.storagePath(ext)

	hasher := md5.New()
	url, err := s.store.Save(ctx, path, io.TeeReader(in.Reader, hasher))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.FileInfo{
		FileName:     name,
		OriginalName: in.FileName,
		FilePath:     path,
		FileURL:      url,
		FileExt:      ext,
		FileSize:     in.Size,
		FileType:     filetype.CategoryOf(name),
		MimeType:     filetype.MimeByName(name),
		StorageType:  s.store.Type(),
		FolderID:     in.FolderID,
		CreateUserID: userID,
		FileMD5:      hex.EncodeToString(hasher.Sum(nil)),
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}

	if err := s.insertCharged(ctx, record, in.Size); err != nil {
		_ = s.store.Delete(ctx, path)
		return nil, err
	}
	return record, nil
}

func (s *Service) BatchUpload(ctx context.Context, userID int64, inputs []UploadInput) []UploadResult {
	results := make([]UploadResult, 0, len(inputs))
	for _, in := range inputs {
		record, err := s.Upload(ctx, userID, in)
		if err != nil {
			results = append(results, UploadResult{FileName: in.FileName, Success: false, Message: err.Error()})
			continue
		}
		results = append(results, UploadResult{FileName: in.FileName, Success: true, Record: record})
	}
	return results
}

// RapidUpload creates a record that points at an existing blob with the same
// md5. No bytes move; the new record still counts against its owner's quota.
func (s *Service) RapidUpload(ctx context.Context, userID int64, req RapidUploadRequest) (*domain.FileInfo, error) {
	existing, err := s.files.FindByMD5(ctx, req.FileMD5)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	name := filetype.SanitizeName(req.FileName)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.requireFolder(ctx, req.FolderID, userID); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, userID, existing.FileSize); err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.FileInfo{
		FileName:     name,
		OriginalName: req.FileName,
		FilePath:     existing.FilePath,
		FileURL:      existing.FileURL,
		FileExt:      filetype.Ext(name),
		FileSize:     existing.FileSize,
		FileType:     filetype.CategoryOf(name),
		MimeType:     filetype.MimeByName(name),
		StorageType:  existing.StorageType,
		FolderID:     req.FolderID,
		CreateUserID: userID,
		FileMD5:      existing.FileMD5,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.insertCharged(ctx, record, existing.FileSize); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckExistByMD5 returns the matching live record, or nil when the hash is
// unknown and a full upload is required.
func (s *Service) CheckExistByMD5(ctx context.Context, md5sum string) (*domain.FileInfo, error) {
	existing, err := s.files.FindByMD5(ctx, md5sum)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return existing, err
}

// Info returns a single live record the caller owns.
func (s *Service) Info(ctx context.Context, fileID, userID int64) (*domain.FileInfo, error) {
	f, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return f, nil
}

// Download opens the blob for an owned live file and bumps the download
// counter. The caller must close the reader.
func (s *Service) Download(ctx context.Context, fileID, userID int64) (*domain.FileInfo, io.ReadCloser, error) {
	f, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal)
	if err != nil {
		return nil, nil, s.mapNotFound(err)
	}
	rc, err := s.store.Open(ctx, f.FilePath)
	if err != nil {
		return nil, nil, err
	}
	if err := s.files.IncrementDownloadCount(ctx, fileID); err != nil {
		rc.Close()
		return nil, nil, err
	}
	return f, rc, nil
}

// Preview is Download with the preview counter instead.
func (s *Service) Preview(ctx context.Context, fileID, userID int64) (*domain.FileInfo, io.ReadCloser, error) {
	f, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal)
	if err != nil {
		return nil, nil, s.mapNotFound(err)
	}
	rc, err := s.store.Open(ctx, f.FilePath)
	if err != nil {
		return nil, nil, err
	}
	if err := s.files.IncrementPreviewCount(ctx, fileID); err != nil {
		rc.Close()
		return nil, nil, err
	}
	return f, rc, nil
}

func (s *Service) GetFileBytes(ctx context.Context, fileID, userID int64) ([]byte, error) {
	f, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	rc, err := s.store.Open(ctx, f.FilePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// GetRecord returns any live record without an ownership check. Share access
// goes through here after its own validation.
func (s *Service) GetRecord(ctx context.Context, fileID int64) (*domain.FileInfo, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return f, nil
}

// OpenContent opens the blob behind a record the caller already resolved.
func (s *Service) OpenContent(ctx context.Context, f *domain.FileInfo) (io.ReadCloser, error) {
	return s.store.Open(ctx, f.FilePath)
}

func (s *Service) CountDownload(ctx context.Context, fileID int64) error {
	return s.files.IncrementDownloadCount(ctx, fileID)
}

func (s *Service) List(ctx context.Context, folderID, userID int64) ([]domain.FileInfo, error) {
	return s.files.ListByFolder(ctx, folderID, userID)
}

func (s *Service) Page(ctx context.Context, p repository.FilePageParams) (*repository.FilePage, error) {
	return s.files.Page(ctx, p)
}

func (s *Service) Search(ctx context.Context, keyword string, userID int64) ([]domain.FileInfo, error) {
	return s.files.Search(ctx, keyword, userID)
}

func (s *Service) Favorites(ctx context.Context, userID int64) ([]domain.FileInfo, error) {
	return s.files.ListFavorites(ctx, userID)
}

// Delete moves a live file to the recycle bin.
func (s *Service) Delete(ctx context.Context, fileID, userID int64) error {
	now := time.Now()
	ok, err := s.files.UpdateStatus(ctx, fileID, userID, domain.FileStatusNormal, domain.FileStatusRecycled, &now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

func (s *Service) BatchDelete(ctx context.Context, ids []int64, userID int64) []BatchItemResult {
	return s.batch(ids, func(id int64) error { return s.Delete(ctx, id, userID) })
}

// Restore moves a recycled file back to its folder.
func (s *Service) Restore(ctx context.Context, fileID, userID int64) error {
	ok, err := s.files.UpdateStatus(ctx, fileID, userID, domain.FileStatusRecycled, domain.FileStatusNormal, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

func (s *Service) BatchRestore(ctx context.Context, ids []int64, userID int64) []BatchItemResult {
	return s.batch(ids, func(id int64) error { return s.Restore(ctx, id, userID) })
}

// PermanentDelete marks the record deleted, refunds the quota and purges the
// blob when no other record references it.
func (s *Service) PermanentDelete(ctx context.Context, fileID, userID int64) error {
	f, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal, domain.FileStatusRecycled)
	if err != nil {
		return s.mapNotFound(err)
	}

	now := time.Now()
	ok, err := s.files.UpdateStatus(ctx, fileID, userID, f.Status, domain.FileStatusDeleted, &now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}

	if err := s.users.AdjustStorageUsed(ctx, userID, -f.FileSize); err != nil {
		return err
	}

	refs, err := s.files.CountByPath(ctx, f.FilePath, f.ID)
	if err != nil {
		return err
	}
	if refs == 0 {
		return s.store.Delete(ctx, f.FilePath)
	}
	return nil
}

func (s *Service) BatchPermanentDelete(ctx context.Context, ids []int64, userID int64) []BatchItemResult {
	return s.batch(ids, func(id int64) error { return s.PermanentDelete(ctx, id, userID) })
}

func (s *Service) Trash(ctx context.Context, userID int64) ([]domain.FileInfo, error) {
	return s.files.ListTrash(ctx, userID)
}

// ClearTrash permanently deletes everything in the recycle bin and returns
// how many records went.
func (s *Service) ClearTrash(ctx context.Context, userID int64) (int, error) {
	recycled, err := s.files.ListTrash(ctx, userID)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, f := range recycled {
		if err := s.PermanentDelete(ctx, f.ID, userID); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

func (s *Service) Move(ctx context.Context, fileID, userID, targetFolderID int64) error {
	if err := s.requireFolder(ctx, targetFolderID, userID); err != nil {
		return err
	}
	ok, err := s.files.UpdateFolder(ctx, fileID, userID, targetFolderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

// Copy duplicates the record and the blob into a fresh path and charges the
// quota for the second copy.
func (s *Service) Copy(ctx context.Context, fileID, userID, targetFolderID int64) (*domain.FileInfo, error) {
	src, err := s.files.GetOwned(ctx, fileID, userID, domain.FileStatusNormal)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if err := s.requireFolder(ctx, targetFolderID, userID); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, userID, src.FileSize); err != nil {
		return nil, err
	}

	dst := s.storagePath(src.FileExt)
	if err := s.store.Copy(ctx, src.FilePath, dst); err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.FileInfo{
		FileName:     src.FileName,
		OriginalName: src.OriginalName,
		FilePath:     dst,
		FileURL:      s.store.URL(dst),
		FileExt:      src.FileExt,
		FileSize:     src.FileSize,
		FileType:     src.FileType,
		MimeType:     src.MimeType,
		StorageType:  s.store.Type(),
		FolderID:     targetFolderID,
		CreateUserID: userID,
		FileMD5:      src.FileMD5,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.insertCharged(ctx, record, src.FileSize); err != nil {
		_ = s.store.Delete(ctx, dst)
		return nil, err
	}
	return record, nil
}

// CopyTo is Copy without the source-ownership requirement, used when saving
// shared content into one's own tree. Validation of the share happened
// upstream.
func (s *Service) CopyTo(ctx context.Context, src *domain.FileInfo, targetUserID, targetFolderID int64) (*domain.FileInfo, error) {
	if err := s.checkQuota(ctx, targetUserID, src.FileSize); err != nil {
		return nil, err
	}

	dst := s.storagePath(src.FileExt)
	if err := s.store.Copy(ctx, src.FilePath, dst); err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.FileInfo{
		FileName:     src.FileName,
		OriginalName: src.OriginalName,
		FilePath:     dst,
		FileURL:      s.store.URL(dst),
		FileExt:      src.FileExt,
		FileSize:     src.FileSize,
		FileType:     src.FileType,
		MimeType:     src.MimeType,
		StorageType:  s.store.Type(),
		FolderID:     targetFolderID,
		CreateUserID: targetUserID,
		FileMD5:      src.FileMD5,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.insertCharged(ctx, record, src.FileSize); err != nil {
		_ = s.store.Delete(ctx, dst)
		return nil, err
	}
	return record, nil
}

// Rename re-derives extension, mime type and category from the new name.
func (s *Service) Rename(ctx context.Context, fileID, userID int64, newName string) error {
	name := filetype.SanitizeName(newName)
	if name == "" {
		return ErrInvalidName
	}
	ok, err := s.files.UpdateName(ctx, fileID, userID, name,
		filetype.Ext(name), filetype.MimeByName(name), filetype.CategoryOf(name))
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

func (s *Service) Favorite(ctx context.Context, fileID, userID int64, favorite bool) error {
	ok, err := s.files.UpdateFavorite(ctx, fileID, userID, favorite)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

func (s *Service) storagePath(ext string) string {
	return time.Now().Format("2006/01/02") + "/" + s.tokens.StorageName(ext)
}

func (s *Service) requireFolder(ctx context.Context, folderID, userID int64) error {
	if folderID == domain.RootFolderID {
		return nil
	}
	_, err := s.folders.GetOwned(ctx, folderID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFolderNotFound
	}
	return err
}

func (s *Service) checkQuota(ctx context.Context, userID, size int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.StorageUsed+size > user.StorageLimit {
		return ErrStorageFull
	}
	return nil
}

// insertCharged creates the record and charges the owner's quota in one
// transaction.
func (s *Service) insertCharged(ctx context.Context, record *domain.FileInfo, size int64) error {
	return s.files.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", record.CreateUserID).
			UpdateColumn("storage_used", gorm.Expr("storage_used + ?", size)).Error
	})
}

func (s *Service) batch(ids []int64, op func(id int64) error) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(ids))
	for _, id := range ids {
		if err := op(id); err != nil {
			results = append(results, BatchItemResult{ID: id, Success: false, Message: err.Error()})
			continue
		}
		results = append(results, BatchItemResult{ID: id, Success: true})
	}
	return results
}

func (s *Service) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFileNotFound
	}
	return err
}
