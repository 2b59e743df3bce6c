package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/gin-gonic/gin"
)

type todoRequest struct {
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}

type todoHandler struct {
	svc    TodoService
	logger logging.Logger
}

// itemID parses :id; a non-numeric id answers 404 like an unknown one.
func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func (h *todoHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		abortWithError(c, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrEmptyName):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}

func (h *todoHandler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *todoHandler) get(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *todoHandler) create(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	item, err := h.svc.Create(c.Request.Context(), currentUserID(c), req.Name, req.IsComplete)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/TodoItems/%d", item.ID))
	c.JSON(http.StatusCreated, item)
}

func (h *todoHandler) update(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.svc.Update(c.Request.Context(), currentUserID(c), id, req.Name, req.IsComplete); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *todoHandler) delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
