package share

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

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the guest-facing endpoints. They carry the
// link token, not a session.
func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	g := api.Group("/file/share")
	{
		g.GET("/info/:code", h.Info)
		g.GET("/access", h.Access)
		g.GET("/content", h.Content)
		g.POST("/verify", h.Verify)
		g.GET("/download/:code/:fileId", h.Download)
	}
}

func (h *Handler) RegisterProtectedRoutes(api *gin.RouterGroup) {
	g := api.Group("/file/share")
	{
		g.POST("/create", h.Create)
		g.POST("/file/:id", h.QuickShareFile)
		g.POST("/folder/:id", h.QuickShareFolder)
		g.POST("/save", h.Save)
		g.PUT("/update", h.Update)
		g.GET("/list", h.List)
		g.GET("/page", h.Page)
		g.GET("/statistics", h.Statistics)
		g.DELETE("/batch", h.BatchCancel)
		g.DELETE("/:id", h.Cancel)
	}
}

// Create publishes a share link for an owned file or folder.
// @Summary		Create a share
// @Tags		share
// @Security	BearerAuth
// @Param	request	body	CreateRequest	true	"target, expiry preset, extraction code and download flags"
// @Success		200	{object}	map[string]interface{}	"envelope with the link token and extraction code"
// @Router		/file/share/create [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	resp, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// QuickShareFile shares a file with defaults: seven days, code required,
// downloads allowed.
// @Summary		Quick-share a file
// @Tags		share
// @Security	BearerAuth
// @Param	id	path	int	true	"file id"
// @Param	request	body	QuickRequest	false	"optional overrides"
// @Success		200	{object}	map[string]interface{}	"envelope with the link token and extraction code"
// @Router		/file/share/file/{id} [POST]
func (h *Handler) QuickShareFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req QuickRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	resp, err := h.service.QuickShareFile(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// QuickShareFolder shares a folder subtree with the same defaults.
// @Summary		Quick-share a folder
// @Tags		share
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Param	request	body	QuickRequest	false	"optional overrides"
// @Success		200	{object}	map[string]interface{}	"envelope with the link token and extraction code"
// @Router		/file/share/folder/{id} [POST]
func (h *Handler) QuickShareFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req QuickRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := h.service.QuickShareFolder(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Info shows a guest the landing-page facts for a link token.
// @Summary		Share landing info
// @Tags		share
// @Param	code	path	string	true	"link token"
// @Success		200	{object}	map[string]interface{}	"envelope with title, type and code requirement; code 60010 when expired"
// @Router		/file/share/info/{code} [GET]
func (h *Handler) Info(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, info)
}

// Verify checks an extraction code without counting a visit.
// @Summary		Verify an extraction code
// @Tags		share
// @Param	request	body	VerifyRequest	true	"link token and extraction code"
// @Success		200	{object}	map[string]interface{}	"envelope with true; code 60009 on a wrong code"
// @Router		/file/share/verify [POST]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	ok, err := h.service.VerifyExtractCode(c.Request.Context(), req.ShareCode, req.ExtractCode)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		response.ErrorCode(c, response.CodeShareCodeError, ErrShareCodeError.Error())
		return
	}
	response.Success(c, true)
}

// Access opens a share for a guest: validates, counts the visit and returns
// the shared target.
// @Summary		Access a share
// @Tags		share
// @Param	shareCode	query	string	true	"link token"
// @Param	extractCode	query	string	false	"extraction code"
// @Success		200	{object}	map[string]interface{}	"envelope with the share and its target"
// @Router		/file/share/access [GET]
func (h *Handler) Access(c *gin.Context) {
	resp, err := h.service.AccessShare(c.Request.Context(), c.Query("shareCode"), c.Query("extractCode"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Content browses one level of a shared folder.
// @Summary		Browse shared content
// @Tags		share
// @Param	shareCode	query	string	true	"link token"
// @Param	extractCode	query	string	false	"extraction code"
// @Param	folderId	query	int	false	"folder inside the share, 0 is the shared root"
// @Success		200	{object}	map[string]interface{}	"envelope with folders and files"
// @Router		/file/share/content [GET]
func (h *Handler) Content(c *gin.Context) {
	folderID, _ := strconv.ParseInt(c.Query("folderId"), 10, 64)
	resp, err := h.service.ContentList(c.Request.Context(), c.Query("shareCode"), c.Query("extractCode"), folderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Download streams a shared file to a guest when the share allows it.
// @Summary		Download from a share
// @Tags		share
// @Param	code	path	string	true	"link token"
// @Param	fileId	path	int	true	"file id inside the share"
// @Param	extractCode	query	string	false	"extraction code"
// @Success		200	{file}	binary	"file bytes with a Content-Disposition header"
// @Router		/file/share/download/{code}/{fileId} [GET]
func (h *Handler) Download(c *gin.Context) {
	fileID, ok := pathID(c, "fileId")
	if !ok {
		return
	}
	f, rc, err := h.service.DownloadFile(c.Request.Context(), c.Param("code"), c.Query("extractCode"), fileID)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(200, f.FileSize, f.MimeType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(f.FileName)),
	})
}

// Save copies shared files and folders into the caller's own tree.
// @Summary		Save shared content
// @Tags		share
// @Security	BearerAuth
// @Param	request	body	SaveRequest	true	"link token, extraction code, target folder and ids"
// @Success		200	{object}	map[string]interface{}	"envelope with per-id results"
// @Router		/file/share/save [POST]
func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	resp, err := h.service.SaveContent(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// List returns every share the caller created.
// @Summary		List my shares
// @Tags		share
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with the share list"
// @Router		/file/share/list [GET]
func (h *Handler) List(c *gin.Context) {
	shares, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, shares)
}

// Page filters the caller's shares by status and type.
// @Summary		Page through my shares
// @Tags		share
// @Security	BearerAuth
// @Param	current	query	int	false	"page number"
// @Param	size	query	int	false	"page size"
// @Param	status	query	int	false	"1 active, 2 canceled, 3 expired"
// @Param	shareType	query	int	false	"1 file, 2 folder"
// @Success		200	{object}	map[string]interface{}	"envelope with records and total"
// @Router		/file/share/page [GET]
func (h *Handler) Page(c *gin.Context) {
	params := repository.SharePageParams{UserID: middleware.UserID(c)}
	params.Current, _ = strconv.Atoi(c.DefaultQuery("current", "1"))
	params.Size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
	if raw := c.Query("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			st := domain.ShareStatus(v)
			params.Status = &st
		}
	}
	if raw := c.Query("shareType"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			st := domain.ShareType(v)
			params.ShareType = &st
		}
	}

	page, err := h.service.Page(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, page)
}

// Statistics aggregates the caller's share counts and visits.
// @Summary		Share statistics
// @Tags		share
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}	"envelope with totals per status and access count"
// @Router		/file/share/statistics [GET]
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, stats)
}

// Update edits a share's title, expiry, code and limits; extending the
// window revives an expired share.
// @Summary		Update a share
// @Tags		share
// @Security	BearerAuth
// @Param	request	body	UpdateRequest	true	"share id and the fields to change"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/share/update [PUT]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Update(c.Request.Context(), middleware.UserID(c), req); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Cancel withdraws a share link.
// @Summary		Cancel a share
// @Tags		share
// @Security	BearerAuth
// @Param	id	path	int	true	"share id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/file/share/{id} [DELETE]
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// BatchCancel withdraws several shares; each id succeeds or fails on its own.
// @Summary		Cancel several shares
// @Tags		share
// @Security	BearerAuth
// @Param	request	body	BatchRequest	true	"share ids"
// @Success		200	{object}	map[string]interface{}	"envelope with per-id results"
// @Router		/file/share/batch [DELETE]
func (h *Handler) BatchCancel(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	response.Success(c, h.service.BatchCancel(c.Request.Context(), req.IDs, middleware.UserID(c)))
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrShareNotFound):
		response.ErrorCode(c, response.CodeShareNotFound, err.Error())
	case errors.Is(err, ErrShareExpired):
		response.ErrorCode(c, response.CodeShareExpired, err.Error())
	case errors.Is(err, ErrShareCodeError):
		response.ErrorCode(c, response.CodeShareCodeError, err.Error())
	case errors.Is(err, ErrShareAccessLimit):
		response.ErrorCode(c, response.CodeShareAccessLimit, err.Error())
	case errors.Is(err, ErrDownloadDenied):
		response.ErrorCode(c, response.CodeFileDownloadError, err.Error())
	case errors.Is(err, ErrTargetNotFound), errors.Is(err, ErrNotInShare):
		response.ErrorCode(c, response.CodeFileNotFound, err.Error())
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
