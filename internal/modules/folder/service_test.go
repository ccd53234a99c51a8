package folder

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemanager/internal/database"
	"filemanager/internal/domain"
	"filemanager/internal/modules/file"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
	"filemanager/internal/storage/local"
)

type fixture struct {
	svc     *Service
	fileSvc *file.Service
	user    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	files := repository.NewFileRepository(db)
	folders := repository.NewFolderRepository(db)
	store := local.New(t.TempDir(), "/static/files")

	fileSvc := file.NewService(files, folders, users, store, token.NewRandom())
	svc := NewService(folders, files, fileSvc)

	now := time.Now()
	user := &domain.User{
		Username:     "tester",
		PasswordHash: "x",
		Status:       domain.UserActive,
		StorageLimit: 1 << 20,
		CreateTime:   now,
		UpdateTime:   now,
	}
	require.NoError(t, users.Create(context.Background(), user))

	return &fixture{svc: svc, fileSvc: fileSvc, user: user}
}

func (fx *fixture) create(t *testing.T, name string, parentID int64) *domain.FileFolder {
	t.Helper()
	f, err := fx.svc.Create(context.Background(), fx.user.ID, CreateRequest{
		FolderName: name,
		ParentID:   parentID,
	})
	require.NoError(t, err)
	return f
}

func (fx *fixture) addFile(t *testing.T, name string, folderID int64) *domain.FileInfo {
	t.Helper()
	record, err := fx.fileSvc.Upload(context.Background(), fx.user.ID, file.UploadInput{
		FileName: name,
		Size:     4,
		FolderID: folderID,
		Reader:   bytes.NewReader([]byte("data")),
	})
	require.NoError(t, err)
	return record
}

func TestCreate_MaterializedPath(t *testing.T) {
	fx := newFixture(t)

	root := fx.create(t, "projects", 0)
	assert.Equal(t, "/", root.FolderPath)

	child := fx.create(t, "2026", root.ID)
	assert.Equal(t, fmt.Sprintf("/%d/", root.ID), child.FolderPath)

	grand := fx.create(t, "q3", child.ID)
	assert.Equal(t, fmt.Sprintf("/%d/%d/", root.ID, child.ID), grand.FolderPath)
}

func TestContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	root := fx.create(t, "docs", 0)
	fx.create(t, "sub", root.ID)
	fx.addFile(t, "readme.txt", root.ID)

	content, err := fx.svc.Content(ctx, root.ID, fx.user.ID)
	require.NoError(t, err)
	assert.Len(t, content.Folders, 1)
	assert.Len(t, content.Files, 1)
}

func TestMove_RewritesSubtreePaths(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	a := fx.create(t, "a", 0)
	b := fx.create(t, "b", a.ID)
	c := fx.create(t, "c", b.ID)
	dest := fx.create(t, "dest", 0)

	require.NoError(t, fx.svc.Move(ctx, b.ID, fx.user.ID, dest.ID))

	moved, err := fx.svc.Get(ctx, b.ID, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, moved.ParentID)
	assert.Equal(t, fmt.Sprintf("/%d/", dest.ID), moved.FolderPath)

	descendant, err := fx.svc.Get(ctx, c.ID, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/%d/%d/", dest.ID, b.ID), descendant.FolderPath)
}

func TestMove_RejectsCycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	a := fx.create(t, "a", 0)
	b := fx.create(t, "b", a.ID)

	assert.ErrorIs(t, fx.svc.Move(ctx, a.ID, fx.user.ID, a.ID), ErrInvalidMove)
	assert.ErrorIs(t, fx.svc.Move(ctx, a.ID, fx.user.ID, b.ID), ErrInvalidMove)
}

func TestSoftDeleteAndRestore_Recursive(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	root := fx.create(t, "root", 0)
	sub := fx.create(t, "sub", root.ID)
	record := fx.addFile(t, "inner.txt", sub.ID)

	require.NoError(t, fx.svc.SoftDelete(ctx, root.ID, fx.user.ID))

	_, err := fx.svc.Get(ctx, sub.ID, fx.user.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	trash, err := fx.fileSvc.Trash(ctx, fx.user.ID)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, record.ID, trash[0].ID)

	require.NoError(t, fx.svc.Restore(ctx, root.ID, fx.user.ID))

	_, err = fx.svc.Get(ctx, sub.ID, fx.user.ID)
	assert.NoError(t, err)
	files, err := fx.fileSvc.List(ctx, sub.ID, fx.user.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPermanentDelete_PurgesFilesAndQuota(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	root := fx.create(t, "root", 0)
	sub := fx.create(t, "sub", root.ID)
	fx.addFile(t, "x.txt", root.ID)
	fx.addFile(t, "y.txt", sub.ID)

	require.NoError(t, fx.svc.PermanentDelete(ctx, root.ID, fx.user.ID))

	_, err := fx.svc.Get(ctx, root.ID, fx.user.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	trash, err := fx.fileSvc.Trash(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestRenameAndFavorite(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.create(t, "old", 0)
	require.NoError(t, fx.svc.Rename(ctx, f.ID, fx.user.ID, "new"))

	renamed, err := fx.svc.Get(ctx, f.ID, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", renamed.FolderName)

	require.NoError(t, fx.svc.Favorite(ctx, f.ID, fx.user.ID, true))
	fav, err := fx.svc.Get(ctx, f.ID, fx.user.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)
}
