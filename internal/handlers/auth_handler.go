package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shopbe/internal/models"
	"shopbe/internal/services"
)

type AuthHandler struct {
	authService   services.AuthService
	googleService services.GoogleService
	// front-end URL the Google callback redirects back to
	clientRedirectURI string
}

func NewAuthHandler(authService services.AuthService, googleService services.GoogleService, clientRedirectURI string) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		googleService:     googleService,
		clientRedirectURI: clientRedirectURI,
	}
}

// @Summary      Đăng ký tài khoản
// @Description  Tạo tài khoản mới sau khi xác thực mã OTP gửi qua email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Thông tin đăng ký"
// @Success      201   {object}  models.User
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Gửi mã OTP
// @Description  Gửi mã OTP về email cho đăng ký hoặc quên mật khẩu
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SendOTPRequest  true  "Email và loại mã"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /auth/otp [post]
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.SendOTP(c.Request.Context(), req.Email, req.Type); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gửi mã OTP thành công"})
}

// @Summary      Đăng nhập
// @Description  Đăng nhập bằng email và mật khẩu, trả về cặp token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Thông tin đăng nhập"
// @Success      200   {object}  models.TokenPair
// @Failure      422   {object}  map[string]interface{}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary      Làm mới token
// @Description  Đổi refresh token cũ lấy cặp token mới; token cũ bị vô hiệu hoá
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshTokenRequest  true  "Refresh token"
// @Success      200   {object}  models.TokenPair
// @Failure      401   {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary      Đăng xuất
// @Description  Xoá refresh token; báo riêng nếu token đã bị thu hồi trước đó
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshTokenRequest  true  "Refresh token"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successfully"})
}

// @Summary      Đặt lại mật khẩu
// @Description  Đặt lại mật khẩu bằng mã OTP quên mật khẩu; thu hồi mọi phiên đăng nhập
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Email, mã OTP và mật khẩu mới"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đổi mật khẩu thành công"})
}

// @Summary      Thông tin tài khoản
// @Description  Trả về hồ sơ của người dùng hiện tại theo access token
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := getIntFromCtx(c, "user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Link đăng nhập Google
// @Description  Trả về URL uỷ quyền Google kèm state mã hoá user-agent và IP
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/google-link [get]
func (h *AuthHandler) GoogleLink(c *gin.Context) {
	link := h.googleService.AuthorizationURL(c.Request.UserAgent(), c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"url": link})
}

// @Summary      Google OAuth callback
// @Description  Đổi authorization code lấy token và chuyển hướng về ứng dụng client
// @Tags         Auth
// @Param        code   query  string  true   "Authorization code"
// @Param        state  query  string  false  "Opaque state"
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	pair, err := h.googleService.Callback(c.Request.Context(), code, state)
	if err != nil {
		log.Printf("[auth][google] callback failed: %v", err)
		msg := "Đã có lỗi xảy ra khi đăng nhập bằng Google, vui lòng thử lại bằng cách khác"
		c.Redirect(http.StatusFound, fmt.Sprintf("%s?error=%s", h.clientRedirectURI, url.QueryEscape(msg)))
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s?accessToken=%s&refreshToken=%s",
		h.clientRedirectURI, url.QueryEscape(pair.AccessToken), url.QueryEscape(pair.RefreshToken)))
}
