package share

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemanager/internal/database"
	"filemanager/internal/domain"
	"filemanager/internal/modules/file"
	"filemanager/internal/modules/folder"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
	"filemanager/internal/storage/local"
)

type fixture struct {
	svc       *Service
	fileSvc   *file.Service
	folderSvc *folder.Service
	shares    *repository.ShareRepository
	owner     *domain.User
	guest     *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	files := repository.NewFileRepository(db)
	folders := repository.NewFolderRepository(db)
	shares := repository.NewShareRepository(db)
	store := local.New(t.TempDir(), "/static/files")
	tokens := token.NewRandom()

	fileSvc := file.NewService(files, folders, users, store, tokens)
	folderSvc := folder.NewService(folders, files, fileSvc)
	svc := NewService(shares, files, folders, fileSvc, tokens)

	newUser := func(name string) *domain.User {
		now := time.Now()
		u := &domain.User{
			Username:     name,
			PasswordHash: "x",
			Status:       domain.UserActive,
			StorageLimit: 1 << 20,
			CreateTime:   now,
			UpdateTime:   now,
		}
		require.NoError(t, users.Create(context.Background(), u))
		return u
	}

	return &fixture{
		svc:       svc,
		fileSvc:   fileSvc,
		folderSvc: folderSvc,
		shares:    shares,
		owner:     newUser("owner"),
		guest:     newUser("guest"),
	}
}

func (fx *fixture) upload(t *testing.T, name string, folderID int64) *domain.FileInfo {
	t.Helper()
	record, err := fx.fileSvc.Upload(context.Background(), fx.owner.ID, file.UploadInput{
		FileName: name,
		Size:     int64(len("content of " + name)),
		FolderID: folderID,
		Reader:   bytes.NewReader([]byte("content of " + name)),
	})
	require.NoError(t, err)
	return record
}

func boolPtr(v bool) *bool { return &v }

func TestCreateAndCheck(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "doc.pdf", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
	})
	require.NoError(t, err)
	assert.Len(t, resp.ShareURL, 16)
	assert.True(t, resp.NeedCode)
	assert.Len(t, resp.ShareCode, 4)

	// wrong code
	_, err = fx.svc.CheckShareValid(ctx, resp.ShareURL, "0000")
	if resp.ShareCode != "0000" {
		assert.ErrorIs(t, err, ErrShareCodeError)
	}

	sh, err := fx.svc.CheckShareValid(ctx, resp.ShareURL, resp.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", sh.ShareTitle)
	assert.Equal(t, domain.ExpireDays, sh.ExpireType)
	assert.Equal(t, 7, sh.ExpireDays)

	_, err = fx.svc.CheckShareValid(ctx, "deadbeefdeadbeef", "1234")
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestCreate_TargetMustBeOwned(t *testing.T) {
	fx := newFixture(t)
	record := fx.upload(t, "private.txt", 0)

	_, err := fx.svc.Create(context.Background(), fx.guest.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
	})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestLazyExpiry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "old.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
		NeedCode:  boolPtr(false),
	})
	require.NoError(t, err)

	// push the window into the past; the next touch must flip the status
	sh, err := fx.shares.GetByID(ctx, resp.ShareID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	sh.ExpireTime = &past
	require.NoError(t, fx.shares.Update(ctx, sh))

	_, err = fx.svc.CheckShareValid(ctx, resp.ShareURL, "")
	assert.ErrorIs(t, err, ErrShareExpired)

	stored, err := fx.shares.GetByID(ctx, resp.ShareID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusExpired, stored.Status)

	// once expired the share never resolves again
	_, err = fx.svc.CheckShareValid(ctx, resp.ShareURL, "")
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestLazyExpiry_ExactBoundary(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "edge.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
		NeedCode:  boolPtr(false),
	})
	require.NoError(t, err)

	deadline := time.Now().Add(time.Hour).Truncate(time.Second)
	sh, err := fx.shares.GetByID(ctx, resp.ShareID)
	require.NoError(t, err)
	sh.ExpireTime = &deadline
	require.NoError(t, fx.shares.Update(ctx, sh))

	// an instant before the deadline the share still resolves
	fx.svc.now = func() time.Time { return deadline.Add(-time.Nanosecond) }
	_, err = fx.svc.CheckShareValid(ctx, resp.ShareURL, "")
	require.NoError(t, err)

	// at the deadline itself it is already gone
	fx.svc.now = func() time.Time { return deadline }
	_, err = fx.svc.CheckShareValid(ctx, resp.ShareURL, "")
	assert.ErrorIs(t, err, ErrShareExpired)
}

func TestAccessLimit(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "limited.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType:   int(domain.ShareTypeFile),
		FileID:      record.ID,
		NeedCode:    boolPtr(false),
		AccessLimit: 1,
	})
	require.NoError(t, err)

	access, err := fx.svc.AccessShare(ctx, resp.ShareURL, "")
	require.NoError(t, err)
	require.NotNil(t, access.File)
	assert.Equal(t, record.ID, access.File.ID)
	assert.Equal(t, int64(1), access.Share.AccessCount)

	_, err = fx.svc.AccessShare(ctx, resp.ShareURL, "")
	assert.ErrorIs(t, err, ErrShareAccessLimit)
}

func TestVerifyExtractCode(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "code.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
	})
	require.NoError(t, err)

	ok, err := fx.svc.VerifyExtractCode(ctx, resp.ShareURL, resp.ShareCode)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.svc.VerifyExtractCode(ctx, resp.ShareURL, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFolderShare_ContentAndScope(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	shared, err := fx.folderSvc.Create(ctx, fx.owner.ID, folder.CreateRequest{FolderName: "shared"})
	require.NoError(t, err)
	inner, err := fx.folderSvc.Create(ctx, fx.owner.ID, folder.CreateRequest{FolderName: "inner", ParentID: shared.ID})
	require.NoError(t, err)
	outside, err := fx.folderSvc.Create(ctx, fx.owner.ID, folder.CreateRequest{FolderName: "outside"})
	require.NoError(t, err)
	fx.upload(t, "in-root.txt", shared.ID)
	fx.upload(t, "in-inner.txt", inner.ID)

	resp, err := fx.svc.QuickShareFolder(ctx, fx.owner.ID, shared.ID, QuickRequest{NeedCode: boolPtr(false)})
	require.NoError(t, err)

	root, err := fx.svc.ContentList(ctx, resp.ShareURL, "", 0)
	require.NoError(t, err)
	assert.Len(t, root.Folders, 1)
	assert.Len(t, root.Files, 1)

	sub, err := fx.svc.ContentList(ctx, resp.ShareURL, "", inner.ID)
	require.NoError(t, err)
	assert.Len(t, sub.Files, 1)

	_, err = fx.svc.ContentList(ctx, resp.ShareURL, "", outside.ID)
	assert.ErrorIs(t, err, ErrNotInShare)
}

func TestDownloadFile(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "dl.txt", 0)
	other := fx.upload(t, "other.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType: int(domain.ShareTypeFile),
		FileID:    record.ID,
		NeedCode:  boolPtr(false),
	})
	require.NoError(t, err)

	f, rc, err := fx.svc.DownloadFile(ctx, resp.ShareURL, "", record.ID)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "content of dl.txt", string(got))
	assert.Equal(t, record.ID, f.ID)

	// a file outside the share never leaks through the link
	_, _, err = fx.svc.DownloadFile(ctx, resp.ShareURL, "", other.ID)
	assert.ErrorIs(t, err, ErrNotInShare)
}

func TestDownloadFile_Denied(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "nodl.txt", 0)

	resp, err := fx.svc.Create(ctx, fx.owner.ID, CreateRequest{
		ShareType:     int(domain.ShareTypeFile),
		FileID:        record.ID,
		NeedCode:      boolPtr(false),
		AllowDownload: boolPtr(false),
	})
	require.NoError(t, err)

	_, _, err = fx.svc.DownloadFile(ctx, resp.ShareURL, "", record.ID)
	assert.ErrorIs(t, err, ErrDownloadDenied)
}

func TestSaveContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	shared, err := fx.folderSvc.Create(ctx, fx.owner.ID, folder.CreateRequest{FolderName: "pack"})
	require.NoError(t, err)
	record := fx.upload(t, "saved.txt", shared.ID)

	resp, err := fx.svc.QuickShareFolder(ctx, fx.owner.ID, shared.ID, QuickRequest{NeedCode: boolPtr(false)})
	require.NoError(t, err)

	saved, err := fx.svc.SaveContent(ctx, fx.guest.ID, SaveRequest{
		ShareCode: resp.ShareURL,
		FileIDs:   []int64{record.ID},
		FolderIDs: []int64{shared.ID},
	})
	require.NoError(t, err)
	require.Len(t, saved.Files, 1)
	assert.True(t, saved.Files[0].Success)
	require.Len(t, saved.Folders, 1)
	assert.True(t, saved.Folders[0].Success)

	// the guest now owns independent copies
	mine, err := fx.fileSvc.List(ctx, 0, fx.guest.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	content, err := fx.folderSvc.Content(ctx, 0, fx.guest.ID)
	require.NoError(t, err)
	require.Len(t, content.Folders, 1)
	assert.Equal(t, "pack", content.Folders[0].FolderName)
}

func TestCancelAndStatistics(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "s.txt", 0)

	a, err := fx.svc.QuickShareFile(ctx, fx.owner.ID, record.ID, QuickRequest{NeedCode: boolPtr(false)})
	require.NoError(t, err)
	b, err := fx.svc.QuickShareFile(ctx, fx.owner.ID, record.ID, QuickRequest{NeedCode: boolPtr(false)})
	require.NoError(t, err)

	_, err = fx.svc.AccessShare(ctx, a.ShareURL, "")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Cancel(ctx, b.ShareID, fx.owner.ID))
	_, err = fx.svc.CheckShareValid(ctx, b.ShareURL, "")
	assert.ErrorIs(t, err, ErrShareNotFound)

	// only the owner can cancel
	assert.ErrorIs(t, fx.svc.Cancel(ctx, a.ShareID, fx.guest.ID), ErrShareNotFound)

	stats, err := fx.svc.Statistics(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.Canceled)
	assert.Equal(t, int64(1), stats.TotalAccess)
}

func TestUpdate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	record := fx.upload(t, "u.txt", 0)

	resp, err := fx.svc.QuickShareFile(ctx, fx.owner.ID, record.ID, QuickRequest{NeedCode: boolPtr(false)})
	require.NoError(t, err)

	title := "renamed share"
	never := 0
	require.NoError(t, fx.svc.Update(ctx, fx.owner.ID, UpdateRequest{
		ID:         resp.ShareID,
		ShareTitle: &title,
		ExpireType: &never,
	}))

	sh, err := fx.shares.GetByID(ctx, resp.ShareID)
	require.NoError(t, err)
	assert.Equal(t, "renamed share", sh.ShareTitle)
	assert.Equal(t, domain.ExpireNever, sh.ExpireType)
	assert.Nil(t, sh.ExpireTime)

	// strangers cannot touch it
	assert.ErrorIs(t, fx.svc.Update(ctx, fx.guest.ID, UpdateRequest{ID: resp.ShareID, ShareTitle: &title}), ErrShareNotFound)

	// unknown ids report not-found, not a bare repo error
	assert.ErrorIs(t, fx.svc.Update(ctx, fx.owner.ID, UpdateRequest{ID: 99999, ShareTitle: &title}), ErrShareNotFound)
}
