package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Handler handles PIN authentication requests
type Handler struct {
	pinHash       string
	tokenDuration time.Duration
}

// NewHandler creates a new auth handler
func NewHandler(pinHash string, tokenDuration time.Duration) *Handler {
	return &Handler{pinHash: pinHash, tokenDuration: tokenDuration}
}

// VerifyPinRequest represents the PIN verification request body
type VerifyPinRequest struct {
	Pin string `json:"pin" binding:"required,min=1,max=50"`
}

// TokenResponse represents the session token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// VerifyPin handles PIN verification
// @Summary Verify the access PIN
// @Description Verify the operator PIN and receive a session JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyPinRequest true "Access PIN"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} map[string]string "Incorrect PIN"
// @Router /auth/verify-pin [post]
func (h *Handler) VerifyPin(c *gin.Context) {
	var req VerifyPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.pinHash), []byte(req.Pin)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect PIN"})
		return
	}

	token, err := GenerateToken(h.tokenDuration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.tokenDuration.Seconds()),
	})
}

// Logout handles logout. The token is discarded client-side.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

// RegisterRoutes registers auth routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/verify-pin", h.VerifyPin)
	rg.POST("/logout", h.Logout)
}
