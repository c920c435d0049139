package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/service"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/storage"
)

// currentAccount returns the authenticated account for the request. Routes
// using this helper are always mounted behind the auth middleware, so the
// value is guaranteed to be present.
func currentAccount(c echo.Context) *model.Account {
	acc, _ := c.Get(auth.AccountContextKey).(*model.Account)
	return acc
}

// ProfileHandler serves the authenticated account's own profile.
type ProfileHandler struct {
	Accounts *service.AccountService
	Avatars  *storage.AvatarStorage
}

func NewProfileHandler(accounts *service.AccountService, avatars *storage.AvatarStorage) *ProfileHandler {
	return &ProfileHandler{Accounts: accounts, Avatars: avatars}
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(c echo.Context) error {
	acc := currentAccount(c)
	return c.JSON(http.StatusOK, accountPart{
		ID:        acc.ID,
		Username:  acc.Username,
		Email:     acc.Email,
		Avatar:    acc.Avatar,
		CreatedAt: acc.CreatedAt,
	})
}

// Avatar handles PATCH /api/profile/avatar. The uploaded file is stored in
// the object store and the resulting public URL is persisted on the account.
func (h *ProfileHandler) Avatar(c echo.Context) error {
	acc := currentAccount(c)
	if h.Avatars == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "avatar storage is not configured"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer src.Close()

	contentType := fh.Header.Get("Content-Type")
	url, err := h.Avatars.Upload(c.Request().Context(), acc.Username, acc.ID, src, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	if err := h.Accounts.UpdateAvatar(c.Request().Context(), acc, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, accountPart{
		ID:        acc.ID,
		Username:  acc.Username,
		Email:     acc.Email,
		Avatar:    acc.Avatar,
		CreatedAt: acc.CreatedAt,
	})
}
