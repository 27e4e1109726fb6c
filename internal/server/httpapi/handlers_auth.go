package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginRequest binds from either an OAuth2 password form or JSON.
type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// errMalformedRequest replaces binding errors, whose text names Go types and
// validator tags.
var errMalformedRequest = fmt.Errorf("%w: malformed request", common.ErrorInvalidInput)

func badRequest(error) error {
	return errMalformedRequest
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondBodyTokenError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *handlers) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondBodyTokenError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}
