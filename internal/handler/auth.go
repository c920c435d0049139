package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts *service.AccountService
}

func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username" validate:"required,min=5,max=16"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type requestEmailReq struct {
	Email string `json:"email" validate:"required,email"`
}

type accountPart struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func accountToPart(a *model.Account) accountPart {
	return accountPart{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Avatar:    a.Avatar,
		CreatedAt: a.CreatedAt,
	}
}

// Signup: create an unconfirmed account and schedule the confirmation email.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Accounts.Signup(ctx, strings.TrimSpace(req.Username), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   accountToPart(acc),
		"detail": "Account successfully created. Check your email for confirmation.",
	})
}

// Login: verify credentials and return a fresh token pair. Unlike the
// auth gate, login tells the caller which precondition failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email"})
		case errors.Is(err, service.ErrEmailNotConfirmed):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email not confirmed"})
		case errors.Is(err, service.ErrInvalidPassword):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	})
}

// Refresh: exchange the bearer refresh token for a rotated pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Accounts.Refresh(ctx, raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	})
}

// ConfirmEmail: consume the confirmation link token. Calling it twice
// with the same valid token is fine.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	token := c.Param("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	already, err := h.Accounts.ConfirmEmail(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrVerification) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification error"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

// RequestEmail: ask for another confirmation email. The answer is the
// same whether or not the address is registered.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req requestEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	already, err := h.Accounts.RequestConfirmation(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}
