package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/videotube/videotube-api/internal/application"
	"github.com/videotube/videotube-api/internal/domain/entity"
	"github.com/videotube/videotube-api/internal/interface/middleware"
	"github.com/videotube/videotube-api/pkg/helpers"
	"github.com/videotube/videotube-api/pkg/media"
	"github.com/videotube/videotube-api/pkg/response"
	"github.com/videotube/videotube-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func mediaFile(fh *multipart.FileHeader) (*media.File, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &media.File{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, nil
}

// Register handles POST /register: multipart fields fullname, username,
// email, password plus an avatar file (required) and coverImage (optional).
func (h *UserHandler) Register(c *gin.Context) {
	in := application.RegisterInput{
		Fullname: c.PostForm("fullname"),
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		f, closeFn, err := mediaFile(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "avatar upload failed", nil)
			return
		}
		defer closeFn()
		in.Avatar = f
	}
	if fh, err := c.FormFile("coverImage"); err == nil {
		f, closeFn, err := mediaFile(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "cover image upload failed", nil)
			return
		}
		defer closeFn()
		in.Cover = f
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Public(), "user registered successfully")
}

// Login handles POST /login with a JSON body carrying username or email plus
// password. On success both tokens are set as httpOnly cookies and returned
// in the body.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         u.Public(),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "login successful")
}

// Logout clears the stored refresh token and both cookies.
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Invalidate(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, nil, "logged out")
}

// Refresh rotates the refresh token taken from the cookie or the JSON body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshTokenCookie)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		response.Error(c, http.StatusBadRequest, "refresh token is required", nil)
		return
	}

	_, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "token refreshed")
}

// ChangePassword verifies the old password before storing the new one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "password changed")
}

// CurrentUser returns the sanitized identity resolved by the auth middleware.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, ok := c.Get(middleware.CtxUserKey)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	response.Success(c, http.StatusOK, u.(entity.PublicUser), "current user")
}

// UpdateAccount changes fullname and/or email.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateAccount(c.Request.Context(), uid, req.Fullname, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "account updated")
}

// UpdateAvatar handles PATCH /avatar with a single file field.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.Svc.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /cover-image with a single file field.
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.Svc.UpdateCoverImage)
}

func (h *UserHandler) updateImage(c *gin.Context, field string, update func(ctx context.Context, userID string, f media.File) (*entity.User, error)) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, field+" file is required", nil)
		return
	}
	f, closeFn, err := mediaFile(fh)
	if err != nil {
		response.Error(c, http.StatusBadRequest, field+" upload failed", nil)
		return
	}
	defer closeFn()

	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := update(c.Request.Context(), uid, *f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), field+" updated")
}
