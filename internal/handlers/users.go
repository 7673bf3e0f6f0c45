package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobvision/api/internal/httperr"
	"jobvision/api/internal/service"
)

func (h HandlerSet) FetchByEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	user, err := h.authService.FetchByEmail(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// FetchByID treats a non-numeric id like an unknown one.
func (h HandlerSet) FetchByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.Abort(c, h.log, service.ErrNotFound)
		return
	}

	user, err := h.authService.FetchByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}
