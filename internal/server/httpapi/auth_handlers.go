package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type authHandler struct {
	svc    AuthService
	logger logging.Logger
}

func (h *authHandler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrPasswordTooLong) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		internalError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *authHandler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			abortWithError(c, http.StatusBadRequest, common.ErrInvalidCredentials.Error())
			return
		}
		internalError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	pair, err := h.svc.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		internalError(c, h.logger, err)
		return
	}
	if pair == nil {
		abortWithError(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	c.JSON(http.StatusOK, pair)
}
