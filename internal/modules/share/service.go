package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"filemanager/internal/domain"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
)

// fileContent is the slice of the file service the share module needs.
type fileContent interface {
	OpenContent(ctx context.Context, f *domain.FileInfo) (io.ReadCloser, error)
	CountDownload(ctx context.Context, fileID int64) error
	CopyTo(ctx context.Context, src *domain.FileInfo, targetUserID, targetFolderID int64) (*domain.FileInfo, error)
}

// Service implements share links. Expiry is lazy: an overdue share flips to
// expired the first time a guest touches it, there is no sweeper.
type Service struct {
	shares  *repository.ShareRepository
	files   *repository.FileRepository
	folders *repository.FolderRepository
	content fileContent
	tokens  token.Source
	now     func() time.Time
}

func NewService(
	shares *repository.ShareRepository,
	files *repository.FileRepository,
	folders *repository.FolderRepository,
	content fileContent,
	tokens token.Source,
) *Service {
	return &Service{shares: shares, files: files, folders: folders, content: content, tokens: tokens, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*CreateResponse, error) {
	title := req.ShareTitle

	switch domain.ShareType(req.ShareType) {
	case domain.ShareTypeFile:
		f, err := s.files.GetOwned(ctx, req.FileID, userID, domain.FileStatusNormal)
		if err != nil {
			return nil, s.mapTarget(err)
		}
		if title == "" {
			title = f.FileName
		}
	case domain.ShareTypeFolder:
		f, err := s.folders.GetOwned(ctx, req.FolderID, userID)
		if err != nil {
			return nil, s.mapTarget(err)
		}
		if title == "" {
			title = f.FolderName
		}
	}

	expireType, expireDays, expireTime := normalizeExpire(req.ExpireType, req.ExpireDays)

	needCode := true
	if req.NeedCode != nil {
		needCode = *req.NeedCode
	}
	allowDownload := true
	if req.AllowDownload != nil {
		allowDownload = *req.AllowDownload
	}

	now := time.Now()
	sh := &domain.FileShare{
		ShareTitle:    title,
		ShareType:     domain.ShareType(req.ShareType),
		FileID:        req.FileID,
		FolderID:      req.FolderID,
		CreateUserID:  userID,
		ShareURL:      s.tokens.ShareToken(),
		ExpireType:    expireType,
		ExpireDays:    expireDays,
		ExpireTime:    expireTime,
		NeedCode:      needCode,
		AllowDownload: allowDownload,
		AccessLimit:   req.AccessLimit,
		Status:        domain.ShareStatusActive,
		Remark:        req.Remark,
		CreateTime:    now,
		UpdateTime:    now,
	}
	if needCode {
		sh.ShareCode = s.tokens.ExtractCode()
	}

	if err := s.shares.Create(ctx, sh); err != nil {
		return nil, err
	}
	return &CreateResponse{ShareID: sh.ID, ShareURL: sh.ShareURL, ShareCode: sh.ShareCode, NeedCode: sh.NeedCode}, nil
}

// QuickShareFile shares a file with one call: seven days, extraction code
// on, downloads allowed, unless the optional body overrides.
func (s *Service) QuickShareFile(ctx context.Context, userID, fileID int64, req QuickRequest) (*CreateResponse, error) {
	return s.Create(ctx, userID, quickToCreate(req, domain.ShareTypeFile, fileID, 0))
}

func (s *Service) QuickShareFolder(ctx context.Context, userID, folderID int64, req QuickRequest) (*CreateResponse, error) {
	return s.Create(ctx, userID, quickToCreate(req, domain.ShareTypeFolder, 0, folderID))
}

// Info resolves a link token for a guest landing page. The extraction code
// is not required yet, but expiry already applies.
func (s *Service) Info(ctx context.Context, shareURL string) (*InfoResponse, error) {
	sh, err := s.resolveActive(ctx, shareURL)
	if err != nil {
		return nil, err
	}
	info := &InfoResponse{
		ShareTitle:    sh.ShareTitle,
		ShareType:     sh.ShareType,
		NeedCode:      sh.NeedCode,
		AllowDownload: sh.AllowDownload,
		CreateTime:    sh.CreateTime.Format(time.RFC3339),
	}
	if sh.ExpireTime != nil {
		info.ExpireTime = sh.ExpireTime.Format(time.RFC3339)
	}
	return info, nil
}

// CheckShareValid is the full gate every guest operation passes through:
// active status, lazy expiry, extraction code, access limit.
func (s *Service) CheckShareValid(ctx context.Context, shareURL, extractCode string) (*domain.FileShare, error) {
	sh, err := s.resolveActive(ctx, shareURL)
	if err != nil {
		return nil, err
	}
	if sh.NeedCode && sh.ShareCode != extractCode {
		return nil, ErrShareCodeError
	}
	if sh.AccessLimit > 0 && sh.AccessCount >= sh.AccessLimit {
		return nil, ErrShareAccessLimit
	}
	return sh, nil
}

func (s *Service) VerifyExtractCode(ctx context.Context, shareURL, extractCode string) (bool, error) {
	sh, err := s.resolveActive(ctx, shareURL)
	if err != nil {
		return false, err
	}
	return !sh.NeedCode || sh.ShareCode == extractCode, nil
}

// AccessShare validates, counts the visit and returns the shared target.
func (s *Service) AccessShare(ctx context.Context, shareURL, extractCode string) (*AccessResponse, error) {
	sh, err := s.CheckShareValid(ctx, shareURL, extractCode)
	if err != nil {
		return nil, err
	}
	if err := s.shares.IncrementAccessCount(ctx, sh.ID); err != nil {
		return nil, err
	}
	sh.AccessCount++

	resp := &AccessResponse{Share: sh}
	switch sh.ShareType {
	case domain.ShareTypeFile:
		f, err := s.files.GetByID(ctx, sh.FileID)
		if err != nil {
			return nil, s.mapTarget(err)
		}
		resp.File = f
	case domain.ShareTypeFolder:
		f, err := s.folders.GetByID(ctx, sh.FolderID)
		if err != nil {
			return nil, s.mapTarget(err)
		}
		resp.Folder = f
	}
	return resp, nil
}

// ContentList browses one level of a shared folder. folderID zero means the
// shared root; anything else must live inside the shared subtree.
func (s *Service) ContentList(ctx context.Context, shareURL, extractCode string, folderID int64) (*ContentResponse, error) {
	sh, err := s.CheckShareValid(ctx, shareURL, extractCode)
	if err != nil {
		return nil, err
	}
	if sh.ShareType != domain.ShareTypeFolder {
		return nil, ErrNotFolderShare
	}

	root, err := s.folders.GetByID(ctx, sh.FolderID)
	if err != nil {
		return nil, s.mapTarget(err)
	}

	target := root
	if folderID != 0 && folderID != root.ID {
		target, err = s.folders.GetByID(ctx, folderID)
		if err != nil {
			return nil, s.mapTarget(err)
		}
		if !insideSubtree(target, root) {
			return nil, ErrNotInShare
		}
	}

	folders, err := s.folders.ListByParent(ctx, target.ID, sh.CreateUserID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, target.ID, sh.CreateUserID)
	if err != nil {
		return nil, err
	}
	return &ContentResponse{Folders: folders, Files: files}, nil
}

// DownloadFile streams a file out of a share. The file must belong to the
// share and the share must allow downloads.
func (s *Service) DownloadFile(ctx context.Context, shareURL, extractCode string, fileID int64) (*domain.FileInfo, io.ReadCloser, error) {
	sh, err := s.CheckShareValid(ctx, shareURL, extractCode)
	if err != nil {
		return nil, nil, err
	}
	if !sh.AllowDownload {
		return nil, nil, ErrDownloadDenied
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, s.mapTarget(err)
	}
	ok, err := s.belongsToShare(ctx, sh, f)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNotInShare
	}

	rc, err := s.content.OpenContent(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if err := s.content.CountDownload(ctx, f.ID); err != nil {
		rc.Close()
		return nil, nil, err
	}
	return f, rc, nil
}

// SaveContent copies shared files and folders into the caller's own tree.
// Each requested id succeeds or fails independently.
func (s *Service) SaveContent(ctx context.Context, userID int64, req SaveRequest) (*SaveResponse, error) {
	sh, err := s.CheckShareValid(ctx, req.ShareCode, req.ExtractCode)
	if err != nil {
		return nil, err
	}
	if req.TargetFolderID != domain.RootFolderID {
		if _, err := s.folders.GetOwned(ctx, req.TargetFolderID, userID); err != nil {
			return nil, s.mapTarget(err)
		}
	}

	resp := &SaveResponse{
		Files:   make([]SaveItemResult, 0, len(req.FileIDs)),
		Folders: make([]SaveItemResult, 0, len(req.FolderIDs)),
	}

	for _, id := range req.FileIDs {
		resp.Files = append(resp.Files, toSaveResult(id, s.saveFile(ctx, sh, id, userID, req.TargetFolderID)))
	}
	for _, id := range req.FolderIDs {
		resp.Folders = append(resp.Folders, toSaveResult(id, s.saveFolder(ctx, sh, id, userID, req.TargetFolderID)))
	}
	return resp, nil
}

func (s *Service) Statistics(ctx context.Context, userID int64) (*repository.ShareStatistics, error) {
	return s.shares.Statistics(ctx, userID)
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.FileShare, error) {
	return s.shares.ListByUser(ctx, userID)
}

func (s *Service) Page(ctx context.Context, p repository.SharePageParams) (*repository.SharePage, error) {
	return s.shares.PageByUser(ctx, p)
}

func (s *Service) Update(ctx context.Context, userID int64, req UpdateRequest) error {
	sh, err := s.shares.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShareNotFound
		}
		return err
	}
	if sh.CreateUserID != userID {
		return ErrShareNotFound
	}

	if req.ShareTitle != nil {
		sh.ShareTitle = *req.ShareTitle
	}
	if req.ExpireType != nil {
		sh.ExpireType, sh.ExpireDays, sh.ExpireTime = normalizeExpire(*req.ExpireType, req.ExpireDays)
		// A share that had lapsed revives when its window is extended.
		if sh.Status == domain.ShareStatusExpired {
			sh.Status = domain.ShareStatusActive
		}
	}
	if req.NeedCode != nil {
		sh.NeedCode = *req.NeedCode
		if sh.NeedCode && sh.ShareCode == "" {
			sh.ShareCode = s.tokens.ExtractCode()
		}
	}
	if req.AllowDownload != nil {
		sh.AllowDownload = *req.AllowDownload
	}
	if req.AccessLimit != nil {
		sh.AccessLimit = *req.AccessLimit
	}
	if req.Remark != nil {
		sh.Remark = *req.Remark
	}
	sh.UpdateTime = time.Now()

	return s.shares.Update(ctx, sh)
}

func (s *Service) Cancel(ctx context.Context, shareID, userID int64) error {
	ok, err := s.shares.UpdateStatus(ctx, shareID, userID, domain.ShareStatusCanceled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrShareNotFound
	}
	return nil
}

func (s *Service) BatchCancel(ctx context.Context, ids []int64, userID int64) []SaveItemResult {
	results := make([]SaveItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, toSaveResult(id, s.Cancel(ctx, id, userID)))
	}
	return results
}

// resolveActive loads an active share and applies lazy expiry. The boundary
// is inclusive: a share whose expire time equals now is already gone.
func (s *Service) resolveActive(ctx context.Context, shareURL string) (*domain.FileShare, error) {
	sh, err := s.shares.GetActiveByURL(ctx, shareURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	if sh.ExpireTime != nil && !s.now().Before(*sh.ExpireTime) {
		if _, err := s.shares.UpdateStatus(ctx, sh.ID, 0, domain.ShareStatusExpired); err != nil {
			return nil, err
		}
		return nil, ErrShareExpired
	}
	return sh, nil
}

func (s *Service) saveFile(ctx context.Context, sh *domain.FileShare, fileID, userID, targetFolderID int64) error {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return s.mapTarget(err)
	}
	ok, err := s.belongsToShare(ctx, sh, f)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInShare
	}
	_, err = s.content.CopyTo(ctx, f, userID, targetFolderID)
	return err
}

// saveFolder deep-copies a shared folder into the caller's tree: new folder
// rows, fresh blob copies for every file.
func (s *Service) saveFolder(ctx context.Context, sh *domain.FileShare, folderID, userID, targetParentID int64) error {
	if sh.ShareType != domain.ShareTypeFolder {
		return ErrNotFolderShare
	}
	root, err := s.folders.GetByID(ctx, sh.FolderID)
	if err != nil {
		return s.mapTarget(err)
	}
	src, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return s.mapTarget(err)
	}
	if src.ID != root.ID && !insideSubtree(src, root) {
		return ErrNotInShare
	}
	return s.copyFolderTree(ctx, sh.CreateUserID, src, userID, targetParentID)
}

func (s *Service) copyFolderTree(ctx context.Context, ownerID int64, src *domain.FileFolder, userID, targetParentID int64) error {
	path := "/"
	if targetParentID != domain.RootFolderID {
		parent, err := s.folders.GetOwned(ctx, targetParentID, userID)
		if err != nil {
			return s.mapTarget(err)
		}
		path = parent.FolderPath + fmt.Sprint(parent.ID) + "/"
	}

	now := time.Now()
	copied := &domain.FileFolder{
		FolderName:   src.FolderName,
		ParentID:     targetParentID,
		FolderPath:   path,
		CreateUserID: userID,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.folders.Create(ctx, copied); err != nil {
		return err
	}

	files, err := s.files.ListByFolder(ctx, src.ID, ownerID)
	if err != nil {
		return err
	}
	for i := range files {
		if _, err := s.content.CopyTo(ctx, &files[i], userID, copied.ID); err != nil {
			return err
		}
	}

	children, err := s.folders.ListByParent(ctx, src.ID, ownerID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := s.copyFolderTree(ctx, ownerID, &children[i], userID, copied.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) belongsToShare(ctx context.Context, sh *domain.FileShare, f *domain.FileInfo) (bool, error) {
	if f.Status != domain.FileStatusNormal || f.CreateUserID != sh.CreateUserID {
		return false, nil
	}
	switch sh.ShareType {
	case domain.ShareTypeFile:
		return f.ID == sh.FileID, nil
	case domain.ShareTypeFolder:
		root, err := s.folders.GetByID(ctx, sh.FolderID)
		if err != nil {
			return false, s.mapTarget(err)
		}
		if f.FolderID == root.ID {
			return true, nil
		}
		if f.FolderID == domain.RootFolderID {
			return false, nil
		}
		holder, err := s.folders.GetByID(ctx, f.FolderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return insideSubtree(holder, root), nil
	}
	return false, nil
}

func insideSubtree(f, root *domain.FileFolder) bool {
	return strings.HasPrefix(f.FolderPath, root.FolderPath+fmt.Sprint(root.ID)+"/")
}

// normalizeExpire turns the client preset into the stored expiry fields.
func normalizeExpire(preset, customDays int) (domain.ExpireType, int, *time.Time) {
	var days int
	switch preset {
	case 0:
		return domain.ExpireNever, 0, nil
	case 1:
		days = 1
	case 2:
		days = 7
	case 3:
		days = 30
	case 4:
		days = customDays
		if days <= 0 {
			days = 7
		}
	default:
		days = 7
	}
	t := time.Now().AddDate(0, 0, days)
	return domain.ExpireDays, days, &t
}

func quickToCreate(req QuickRequest, shareType domain.ShareType, fileID, folderID int64) CreateRequest {
	out := CreateRequest{
		ShareType:     int(shareType),
		FileID:        fileID,
		FolderID:      folderID,
		ExpireType:    2,
		ExpireDays:    req.ExpireDays,
		NeedCode:      req.NeedCode,
		AllowDownload: req.AllowDownload,
	}
	if req.ExpireType != nil {
		out.ExpireType = *req.ExpireType
	}
	return out
}

func toSaveResult(id int64, err error) SaveItemResult {
	if err != nil {
		return SaveItemResult{ID: id, Success: false, Message: err.Error()}
	}
	return SaveItemResult{ID: id, Success: true}
}

func (s *Service) mapTarget(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTargetNotFound
	}
	return err
}
