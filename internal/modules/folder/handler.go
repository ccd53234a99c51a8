package folder

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"filemanager/internal/middleware"
	"filemanager/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/folder")
	{
		g.POST("/create", h.Create)
		g.GET("/content", h.Content)
		g.PUT("/rename/:id", h.Rename)
		g.PUT("/move/:id", h.Move)
		g.PUT("/favorite/:id", h.Favorite)
		g.PUT("/restore/:id", h.Restore)
		g.DELETE("/permanent/:id", h.PermanentDelete)
		g.DELETE("/:id", h.Delete)
	}
}

// Create adds a folder under a parent, keeping the materialized path.
// @Summary		Create a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	request	body	CreateRequest	true	"folder name and parent id"
// @Success		200	{object}	map[string]interface{}	"envelope with the new folder"
// @Router		/folder/create [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	f, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, f)
}

// Content lists the subfolders and files directly inside a folder.
// @Summary		Browse a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	folderId	query	int	false	"folder id, 0 is the root"
// @Success		200	{object}	map[string]interface{}	"envelope with folders and files"
// @Router		/folder/content [GET]
func (h *Handler) Content(c *gin.Context) {
	folderID, _ := strconv.ParseInt(c.Query("folderId"), 10, 64)
	content, err := h.service.Content(c.Request.Context(), folderID, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, content)
}

// Rename changes a folder's name.
// @Summary		Rename a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Param	request	body	RenameRequest	true	"new name"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/folder/rename/{id} [PUT]
func (h *Handler) Rename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Rename(c.Request.Context(), id, middleware.UserID(c), req.NewName); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Move reparents a folder and rewrites the paths of its whole subtree.
// @Summary		Move a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Param	request	body	MoveRequest	true	"target parent id"
// @Success		200	{object}	map[string]interface{}	"envelope with true; moving under a descendant is rejected"
// @Router		/folder/move/{id} [PUT]
func (h *Handler) Move(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "invalid request body")
		return
	}
	if err := h.service.Move(c.Request.Context(), id, middleware.UserID(c), req.TargetParentID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Favorite stars or unstars a folder.
// @Summary		Toggle folder favorite
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Param	request	body	FavoriteRequest	true	"favorite flag"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/folder/favorite/{id} [PUT]
func (h *Handler) Favorite(c *gin.Context) {
	id, ok := pathID(c)
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

// Delete recycles a folder together with everything below it.
// @Summary		Recycle a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/folder/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.SoftDelete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// Restore brings a recycled folder subtree back.
// @Summary		Restore a folder
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/folder/restore/{id} [PUT]
func (h *Handler) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Restore(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

// PermanentDelete removes a folder subtree and its files for good.
// @Summary		Delete a folder permanently
// @Tags		folder
// @Security	BearerAuth
// @Param	id	path	int	true	"folder id"
// @Success		200	{object}	map[string]interface{}	"envelope with true"
// @Router		/folder/permanent/{id} [DELETE]
func (h *Handler) PermanentDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.PermanentDelete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, true)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrFolderNotFound) {
		response.ErrorCode(c, response.CodeFolderNotFound, err.Error())
		return
	}
	response.Error(c, err.Error())
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, "invalid id")
		return 0, false
	}
	return id, true
}
