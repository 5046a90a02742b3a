package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/auth"
	"landkit/internal/config"
	"landkit/internal/users"
)

// RegisterParams is the account-registration payload.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *RegisterParams) validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	email := strings.TrimSpace(p.Email)
	switch {
	case email == "":
		errs["email"] = "email is required"
	case !strings.Contains(email, "@"):
		errs["email"] = "email is invalid"
	}
	if len(p.Password) < 8 {
		errs["password"] = "password must be at least 8 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// LoginParams is the credential payload for login.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAction creates a new account and returns a bearer token.
func RegisterAction(ctx *cartridge.Context) error {
	var params RegisterParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	if errs := params.validate(); errs != nil {
		return respondValidationErrors(ctx, errs)
	}

	user, err := users.CreateUser(ctx.DB(), ctx.Logger,
		strings.TrimSpace(params.Name), strings.TrimSpace(params.Email), params.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return respondValidationErrors(ctx, map[string]string{"email": "email is already registered"})
		}
		ctx.Logger.Error("Failed to register user", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to register")
	}

	token, err := issueTokenFor(user.ID)
	if err != nil {
		ctx.Logger.Error("Failed to issue token", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to register")
	}

	return respondData(ctx, http.StatusCreated, tokenResponse(user, token))
}

// LoginAction verifies credentials and returns a bearer token.
func LoginAction(ctx *cartridge.Context) error {
	var params LoginParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	user, err := users.Authenticate(ctx.DB(), strings.TrimSpace(params.Email), params.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return respondError(ctx, http.StatusUnauthorized, "Invalid email or password")
		}
		ctx.Logger.Error("Failed to authenticate user", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to log in")
	}

	token, err := issueTokenFor(user.ID)
	if err != nil {
		ctx.Logger.Error("Failed to issue token", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to log in")
	}

	return respondData(ctx, http.StatusOK, tokenResponse(user, token))
}

// MeAction returns the authenticated account.
func MeAction(ctx *cartridge.Context) error {
	user, err := users.FindByID(ctx.DB(), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, http.StatusNotFound, "Account not found")
	}
	return respondData(ctx, http.StatusOK, user)
}

// RefreshAction exchanges the presented valid token for a fresh one.
func RefreshAction(ctx *cartridge.Context) error {
	userID := currentUserID(ctx)
	if _, err := users.FindByID(ctx.DB(), userID); err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Account no longer exists")
	}

	token, err := issueTokenFor(userID)
	if err != nil {
		ctx.Logger.Error("Failed to refresh token", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to refresh token")
	}

	cfg := config.GetConfig()
	return respondData(ctx, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": auth.TokenType,
		"expires_in": cfg.JWTTTLMinutes * 60,
	})
}

// LogoutAction acknowledges logout. Tokens are stateless; clients drop
// theirs.
func LogoutAction(ctx *cartridge.Context) error {
	return respondMessage(ctx, http.StatusOK, "Logged out")
}

func issueTokenFor(userID uint) (string, error) {
	cfg := config.GetConfig()
	ttl := time.Duration(cfg.JWTTTLMinutes) * time.Minute
	return auth.IssueToken(cfg.JWTSecret, ttl, userID)
}

func tokenResponse(user *users.User, token string) map[string]any {
	cfg := config.GetConfig()
	return map[string]any{
		"user":       user,
		"token":      token,
		"token_type": auth.TokenType,
		"expires_in": cfg.JWTTTLMinutes * 60,
	}
}
