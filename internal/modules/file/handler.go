package file

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"filemanager/internal/domain"
	"filemanager/internal/middleware"
	"filemanager/internal/pkg/response"
	"filemanager/internal/repository"
)

// Handler exposes the file API under /api/file. Every route here is
// owner-scoped and sits behind the auth middleware.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/file")
	{
		g.POST("/upload", h.Upload)
		g.POST("/batch-upload", h.BatchUpload)
		g.POST("/rapid-upload", h.RapidUpload)
		g.GET("/check-md5", h.CheckMD5)

		g.GET("/download/:fileId", h.Download)
		g.GET("/preview/:fileId", h.Preview)

		g.GET("/list", h.List)
		g.GET("/page", h.Page)
		g.GET("/search", h.Search)
		g.GET("/favorites", h.Favorites)
		g.GET("/trash", h.Trash)
		g.GET("/:fileId", h.Info)

		g.DELETE("/batch", h.BatchDelete)
		g.DELETE("/trash/clear", h.ClearTrash)
		g.DELETE("/permanent/:id", h.PermanentDelete)
		g.DELETE("/:id", h.Delete)

		g.PUT("/restore/batch", h.BatchRestore)
		g.PUT("/restore/:id", h.Restore)
		g.PUT("/move/:id", h.Move)
		g.PUT("/copy/:id", h.Copy)
		g.PUT("/rename/:id", h.Rename)
		g.PUT("/favorite/:id", h.Favorite)
	}
}

// Upload stores one file and charges it against the owner's quota.
// @Summary		Upload a file
// @Tags		file
// @Security	BearerAuth
// @Param	file	formData	file	true	"file content"
// @Param	folderId	formData	int	false	"target folder id, 0 is the root"
// @Success		200	{object}	map[string]interface{}	"envelope with the created record; code 60001 when the quota is exceeded"
// @Router		/file/upload [POST]
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.ErrorCode(c, response.CodeFileUploadError, "missing file")
		return
	}
	folderID, _ := strconv.ParseInt(c.PostForm("folderId"), 10, 64)

	src, err := header.Open()
	if err != nil {
		response.ErrorCode(c, response.CodeFileUploadError, "cannot read file")
		return
	}
	defer src.Close()

	record, err := h.service.Upload(c.Request.Context(), middleware.UserID(c), UploadInput{
		FileName: header.Filename,
		Size:     header.Size,
		FolderID: folderID,
		Reader:   src,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, record)
}

// BatchUpload stores several files in one request; each file succeeds or
// fails on its own.
// @Summary		Upload several files
// @Tags		file
// @Security	BearerAuth
// @Param	files	formData	file	true	"file contents, repeatable"
// @Param	folderId	formData	int	false	"target folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with a per-file result list"
// @Router		/file/batch-upload [POST]
func (h *Handler) BatchUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorCode(c, response.CodeFileUploadError, "invalid multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.ErrorCode(c, response.CodeFileUploadError, "no files uploaded")
		return
	}
	folderID, _ := strconv.ParseInt(c.PostForm("folderId"), 10, 64)

	userID := middleware.UserID(c)
	results := make([]UploadResult, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			results = append(results, UploadResult{FileName: header.Filename, Success: false, Message: "cannot read file"})
			continue
		}
		record, err := h.service.Upload(c.Request.Context(), userID, UploadInput{
			FileName: header.Filename,
			Size:     header.Size,
			FolderID: folderID,
			Reader:   src,
		})
		src.Close()
		if err != nil {
			results = append(results, UploadResult{FileName: header.Filename, Success: false, Message: err.Error()})
			continue
		}
		results = append(results, UploadResult{FileName: header.Filename, Success: true, Record: record})
	}
	response.Success(c, results)
}

// RapidUpload creates a record for a blob that already exists, skipping the
// byte transfer.
// @Summary		Rapid upload by hash
// @Tags		file
// @Security	BearerAuth
// @Param	request	body	RapidUploadRequest	true	"md5 hash, file name, target folder"
// @Success		200	{object}	map[string]interface{}	"envelope with the new record, or null when the hash is unknown"
// @Router		/file/rapid-upload [POST]
func (h *Handler) RapidUpload(c *gin.Context) {
	var req RapidUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	record, err := h.service.RapidUpload(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	// nil means no blob with that hash exists; the client falls back to a
	// full upload.
	response.Success(c, record)
}

// CheckMD5 reports whether a blob with the given hash already exists.
// @Summary		Check a content hash
// @Tags		file
// @Security	BearerAuth
// @Param	fileMd5	query	string	true	"32-character md5 hex"
// @Success		200	{object}	map[string]interface{}	"envelope with a matching record, or null"
// @Router		/file/check-md5 [GET]
func (h *Handler) CheckMD5(c *gin.Context) {
	md5sum := c.Query("fileMd5")
	if len(md5sum) != 32 {
		response.Error(c, "fileMd5 must be a 32-character hash")
		return
	}
	record, err := h.service.CheckExistByMD5(c.Request.Context(), md5sum)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, record)
}

// Download streams an owned file as an attachment and counts the download.
// @Summary		Download a file
// @Tags		file
// @Security	BearerAuth
// @Param	fileId	path	int	true	"file id"
// @Success		200	{file}	binary	"file bytes with a Content-Disposition header"
// @Router		/file/download/{fileId} [GET]
func (h *Handler) Download(c *gin.Context) {
	id, ok := pathID(c, "fileId")
	if !ok {
		return
	}
	f, rc, err := h.service.Download(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(200, f.FileSize, f.MimeType, rc, map[string]string{
		"Content-Disposition": attachmentDisposition(f.FileName),
	})
}

// Preview streams an owned file inline for in-browser viewing.
// @Summary		Preview a file
// @Tags		file
// @Security	BearerAuth
// @Param	fileId	path	int	true	"file id"
// @Success		200	{file}	binary	"file bytes served inline"
// @Router		/file/preview/{fileId} [GET]
func (h *Handler) Preview(c *gin.Context) {
	id, ok := pathID(c, "fileId")
	if !ok {
		return
	}
	f, rc, err := h.service.Preview(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(200, f.FileSize, f.MimeType, rc, map[string]string{
		"Content-Disposition": "inline",
	})
}

// Info returns the metadata of a single owned file.
// @Summary		Get file info
// @Tags		file
// @Security	BearerAuth
// @Param	fileId	path	int	true	"file id"
// @Success		200	{object}	map[string]interface{}	"envelope with the record; code 60002 when it does not exist"
// @Router		/file/{fileId} [GET]
func (h *Handler) Info(c *gin.Context) {
	id, ok := pathID(c, "fileId")
	if !ok {
		return
	}
	f, err := h.service.Info(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, f)
}

// List returns the live files directly inside one folder.
// @Summary		List files in a folder
// @Tags		file
// @Security	BearerAuth
// @Param	folderId	query	int	false	"folder id, 0 is the root"
// @Success		200	{object}	map[string]interface{}	"envelope with the file list"
// @Router		/file/list [GET]
func (h *Handler) List(c *gin.Context) {
	folderID, _ := strconv.ParseInt(c.Query("folderId"), 10, 64)
	files, err := h.service.List(c.Request.Context(), folderID, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, files)
}

// Page returns a filtered page of the caller's live files.
// @Summary		Page through files
// @Tags		file
// @Security	BearerAuth
// @Param	current	query	int	false	"page number, starts at 1"
// @Param	size	query	int	false	"page size"
// @Param	folderId	query	int	false	"restrict to one folder"
// @Param	fileName	query	string	false	"name substring filter"
// @Param	fileType	query	int	false	"category filter"
// @Success		200	{object}	map[string]interface{}	"envelope with records and total"
// @Router		/file/page [GET]
func (h *Handler) Page(c *gin.Context) {
	params := repository.FilePageParams{UserID: middleware.UserID(c)}
	params.Current, _ = strconv.Atoi(c.DefaultQuery("current", "1"))
	params.Size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
	params.FolderID, _ = strconv.ParseInt(c.Query("folderId"), 10, 64)
	params.FileName = c.Query("fileName")
	if raw := c.Query("fileType"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cat := domain.FileCategory(v)
			params.FileType = &cat
		}
	}

	page, err := h.service.Page(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, page)
}

// Search finds live files by name substring across all folders.
// @Summary		Search files
// @Tags		file
// @Security	BearerAuth
// @Param	keyword	query	string	true	"name substring"
// @Success		200	{object}	map[string]interface{}	"envelope with the matches"
// @Router		/file/search [GET]
func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		response.Error(c, "keyword is required")
		return
	}
	files, err := h.service.Search(c.Request.Context(), keyword, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, files)
}

// Favorites lists the caller's starred files.
// @Summary		List favorites
// @Tags		file
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with the starred files"
// @Router		/file/favorites [GET]
func (h *Handler) Favorites(c *gin.Context) {
	files, err := h.service.Favorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, files)
}

// Trash lists the recycle bin.
// @Summary		List the recycle bin
// @Tags		file
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with the recycled files"
// @Router		/file/trash [GET]
func (h *Handler) Trash(c *gin.Context) {
	files, err := h.service.Trash(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, files)
}

// Delete moves a file into the recycle bin.
// @Summary		Recycle a file
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// BatchDelete recycles several files; each id succeeds or fails on its own.
// @Summary		Recycle several files
// @Tags		file
// @Security	BearerAuth
// @Param	request	body	BatchRequest	true	"file ids"
// @Success		200	{object}	map[string]interface{}	"envelope with per-id results"
// @Router		/file/batch [DELETE]
func (h *Handler) BatchDelete(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	response.Success(c, h.service.BatchDelete(c.Request.Context(), req.IDs, middleware.UserID(c)))
}

// Restore brings a recycled file back to its folder.
// @Summary		Restore a file
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/restore/{id} [PUT]
func (h *Handler) Restore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Restore(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// BatchRestore restores several recycled files.
// @Summary		Restore several files
// @Tags		file
// @Security	BearerAuth
// @Param	request	body	BatchRequest	true	"file ids"
// @Success		200	{object}	map[string]interface{}	"envelope with per-id results"
// @Router		/file/restore/batch [PUT]
func (h *Handler) BatchRestore(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	response.Success(c, h.service.BatchRestore(c.Request.Context(), req.IDs, middleware.UserID(c)))
}

// PermanentDelete removes a file for good, refunds the quota and purges the
// blob when no other record references it.
// @Summary		Delete a file permanently
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/permanent/{id} [DELETE]
func (h *Handler) PermanentDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.PermanentDelete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// ClearTrash permanently deletes everything in the recycle bin.
// @Summary		Empty the recycle bin
// @Tags		file
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with the number of files removed"
// @Router		/file/trash/clear [DELETE]
func (h *Handler) ClearTrash(c *gin.Context) {
	cleared, err := h.service.ClearTrash(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": cleared})
}

// Move relocates a file into another folder.
// @Summary		Move a file
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Param	request	body	MoveRequest	true	"target folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/move/{id} [PUT]
func (h *Handler) Move(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Move(c.Request.Context(), id, middleware.UserID(c), req.TargetFolderID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Copy duplicates a file, blob included, into a target folder.
// @Summary		Copy a file
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Param	request	body	CopyRequest	true	"target folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with the new record"
// @Router		/file/copy/{id} [PUT]
func (h *Handler) Copy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	record, err := h.service.Copy(c.Request.Context(), id, middleware.UserID(c), req.TargetFolderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, record)
}

// Rename changes a file's display name and re-derives its type.
// @Summary		Rename a file
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Param	request	body	RenameRequest	true	"new file name"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/rename/{id} [PUT]
func (h *Handler) Rename(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Rename(c.Request.Context(), id, middleware.UserID(c), req.NewFileName); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Favorite stars or unstars a file.
// @Summary		Toggle favorite
// @Tags		file
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Param	request	body	FavoriteRequest	true	"favorite flag"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/favorite/{id} [PUT]
func (h *Handler) Favorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Favorite(c.Request.Context(), id, middleware.UserID(c), req.Favorite); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		response.ErrorCode(c, response.CodeFileNotFound, err.Error())
	case errors.Is(err, ErrFolderNotFound):
		response.ErrorCode(c, response.CodeFolderNotFound, err.Error())
	case errors.Is(err, ErrStorageFull):
		response.ErrorCode(c, response.CodeStorageFull, err.Error())
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidName):
		response.ErrorCode(c, response.CodeFileUploadError, err.Error())
	default:
		response.Error(c, err.Error())
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, "invalid id")
		return 0, false
	}
	return id, true
}

func attachmentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(name))
}
