package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemanager/internal/database"
	"filemanager/internal/middleware"
	"filemanager/internal/modules/auth"
	"filemanager/internal/modules/file"
	"filemanager/internal/modules/folder"
	"filemanager/internal/modules/share"
	jwtsvc "filemanager/internal/pkg/jwt"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
	"filemanager/internal/storage/local"
)

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Success   bool            `json:"success"`
	Timestamp int64           `json:"timestamp"`
}

type suite struct {
	router *gin.Engine
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	shareRepo := repository.NewShareRepository(db)

	j := jwtsvc.New("e2e-secret", time.Hour)
	tokens := token.NewRandom()
	store := local.New(t.TempDir(), "/static/files")

	authHandler := auth.NewHandler(auth.NewService(userRepo, j, 1<<20))
	fileService := file.NewService(fileRepo, folderRepo, userRepo, store, tokens)
	fileHandler := file.NewHandler(fileService)
	folderHandler := folder.NewHandler(folder.NewService(folderRepo, fileRepo, fileService))
	shareHandler := share.NewHandler(share.NewService(shareRepo, fileRepo, folderRepo, fileService, tokens))

	r := gin.New()
	api := r.Group("/api")
	{
		authHandler.RegisterPublicRoutes(api)
		shareHandler.RegisterPublicRoutes(api)

		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			fileHandler.RegisterRoutes(protected)
			folderHandler.RegisterRoutes(protected)
			shareHandler.RegisterProtectedRoutes(protected)
		}
	}

	return &suite{router: r}
}

func (s *suite) do(t *testing.T, method, path, bearer string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *suite) doJSON(t *testing.T, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, bearer, body, "application/json")
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func dataField(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func (s *suite) register(t *testing.T, username string) string {
	t.Helper()
	w := s.doJSON(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "password123",
	})
	env := parseEnvelope(t, w)
	require.True(t, env.Success, env.Message)

	w = s.doJSON(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": "password123",
	})
	env = parseEnvelope(t, w)
	require.True(t, env.Success, env.Message)

	var login struct {
		Token string `json:"token"`
	}
	dataField(t, env, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func (s *suite) upload(t *testing.T, bearer, fileName, content string, folderID int64) int64 {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("folderId", fmt.Sprint(folderID)))
	require.NoError(t, mw.Close())

	w := s.do(t, http.MethodPost, "/api/file/upload", bearer, &buf, mw.FormDataContentType())
	env := parseEnvelope(t, w)
	require.True(t, env.Success, env.Message)

	var record struct {
		ID int64 `json:"id"`
	}
	dataField(t, env, &record)
	require.NotZero(t, record.ID)
	return record.ID
}

func TestUploadShareAccessSaveFlow(t *testing.T) {
	s := newSuite(t)

	ownerToken := s.register(t, "owner")
	guestToken := s.register(t, "guest")

	fileID := s.upload(t, ownerToken, "handbook.pdf", "pdf contents here", 0)

	// owner shares the file with one click
	env := parseEnvelope(t, s.doJSON(t, http.MethodPost, fmt.Sprintf("/api/file/share/file/%d", fileID), ownerToken, nil))
	require.True(t, env.Success, env.Message)
	var created struct {
		ShareID   int64  `json:"shareId"`
		ShareURL  string `json:"shareUrl"`
		ShareCode string `json:"shareCode"`
		NeedCode  bool   `json:"needCode"`
	}
	dataField(t, env, &created)
	require.Len(t, created.ShareURL, 16)
	require.True(t, created.NeedCode)
	require.Len(t, created.ShareCode, 4)

	// guests see the landing info without a code
	env = parseEnvelope(t, s.do(t, http.MethodGet, "/api/file/share/info/"+created.ShareURL, "", nil, ""))
	assert.True(t, env.Success)

	// a wrong extraction code is a business failure on HTTP 200
	env = parseEnvelope(t, s.do(t, http.MethodGet,
		fmt.Sprintf("/api/file/share/access?shareCode=%s&extractCode=%s", created.ShareURL, "0000"), "", nil, ""))
	if created.ShareCode != "0000" {
		assert.False(t, env.Success)
		assert.Equal(t, 60009, env.Code)
	}

	// the right code opens the share
	env = parseEnvelope(t, s.do(t, http.MethodGet,
		fmt.Sprintf("/api/file/share/access?shareCode=%s&extractCode=%s", created.ShareURL, created.ShareCode), "", nil, ""))
	require.True(t, env.Success, env.Message)

	// guest downloads through the link
	w := s.do(t, http.MethodGet,
		fmt.Sprintf("/api/file/share/download/%s/%d?extractCode=%s", created.ShareURL, fileID, created.ShareCode), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf contents here", w.Body.String())

	// guest saves the file into their own space
	env = parseEnvelope(t, s.doJSON(t, http.MethodPost, "/api/file/share/save", guestToken, gin.H{
		"shareCode":   created.ShareURL,
		"extractCode": created.ShareCode,
		"fileIds":     []int64{fileID},
	}))
	require.True(t, env.Success, env.Message)

	env = parseEnvelope(t, s.do(t, http.MethodGet, "/api/file/list?folderId=0", guestToken, nil, ""))
	require.True(t, env.Success)
	var guestFiles []struct {
		FileName string `json:"file_name"`
	}
	dataField(t, env, &guestFiles)
	require.Len(t, guestFiles, 1)
	assert.Equal(t, "handbook.pdf", guestFiles[0].FileName)
}

func TestRecycleBinFlow(t *testing.T) {
	s := newSuite(t)
	tokenStr := s.register(t, "cleaner")

	fileID := s.upload(t, tokenStr, "temp.txt", "scratch", 0)

	env := parseEnvelope(t, s.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/file/%d", fileID), tokenStr, nil))
	require.True(t, env.Success, env.Message)

	env = parseEnvelope(t, s.do(t, http.MethodGet, "/api/file/trash", tokenStr, nil, ""))
	require.True(t, env.Success)
	var trash []struct {
		ID int64 `json:"id"`
	}
	dataField(t, env, &trash)
	require.Len(t, trash, 1)

	env = parseEnvelope(t, s.doJSON(t, http.MethodPut, fmt.Sprintf("/api/file/restore/%d", fileID), tokenStr, nil))
	require.True(t, env.Success, env.Message)

	env = parseEnvelope(t, s.do(t, http.MethodGet, "/api/file/list?folderId=0", tokenStr, nil, ""))
	require.True(t, env.Success)
	var files []struct {
		ID int64 `json:"id"`
	}
	dataField(t, env, &files)
	assert.Len(t, files, 1)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := newSuite(t)

	w := s.do(t, http.MethodGet, "/api/file/list?folderId=0", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/file/trash", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBusinessFailuresUseHTTP200(t *testing.T) {
	s := newSuite(t)
	tokenStr := s.register(t, "envelope")

	env := parseEnvelope(t, s.do(t, http.MethodGet, "/api/file/download/99999", tokenStr, nil, ""))
	assert.False(t, env.Success)
	assert.Equal(t, 60002, env.Code)
	assert.NotZero(t, env.Timestamp)
}
