package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/tokens"
	"github.com/dmitrijs2005/lingua/internal/common"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

// AuthService defines session operations for the CLI.
//
// Contract:
//   - Login/Register: authenticate and persist the returned token pair.
//   - Logout: best-effort server logout, then drop tokens and cached data.
//   - Refresh: rotate the token pair using the stored refresh token.
//   - Profile/UpdateProfile: read or change the current user.
//   - LoggedIn: report whether a session is stored.
//   - EnsureSession: like LoggedIn, but rotates an expired access token first.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	LoggedIn(ctx context.Context) (bool, error)
	EnsureSession(ctx context.Context) (bool, error)
}

type authService struct {
	api    client.AuthAPI
	tokens tokens.Store
	cache  *cache.Cache
	logger logging.Logger
}

// NewAuthService constructs an AuthService. c may be nil.
func NewAuthService(api client.AuthAPI, store tokens.Store, c *cache.Cache, l logging.Logger) AuthService {
	if l == nil {
		l = logging.Nop()
	}
	return &authService{api: api, tokens: store, cache: c, logger: l}
}

var ErrMissingCredentials = errors.New("email and password are required")

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return nil, ErrMissingCredentials
	}

	resp, err := a.api.Login(ctx, models.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *authService) saveSession(ctx context.Context, resp *models.AuthResponse) error {
	if resp.AccessToken == "" {
		return fmt.Errorf("backend returned no access token: %w", common.ErrCorruptedData)
	}
	pair := models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := a.tokens.Save(ctx, pair); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	// Data cached for a previous account must not leak into this one.
	a.clearCache(ctx)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	pair, err := a.tokens.Load(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to read tokens on logout", "error", err)
	}
	if pair != nil {
		if err := a.api.Logout(ctx, pair.RefreshToken); err != nil {
			a.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}

	if err := a.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("token clearing error: %w", err)
	}
	a.clearCache(ctx)
	return nil
}

func (a *authService) Refresh(ctx context.Context) error {
	pair, err := a.tokens.Load(ctx)
	if err != nil {
		return err
	}
	if pair == nil {
		return common.ErrNotLoggedIn
	}
	if pair.RefreshToken == "" {
		return common.ErrNoRefreshToken
	}

	resp, err := a.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if cerr := a.tokens.Clear(ctx); cerr != nil {
				a.logger.Warn(ctx, "failed to clear rejected tokens", "error", cerr)
			}
			return fmt.Errorf("session expired: %w", common.ErrNotLoggedIn)
		}
		return fmt.Errorf("refresh error: %w", err)
	}

	next := models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = pair.RefreshToken
	}
	return a.tokens.Save(ctx, next)
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	return a.api.Me(ctx)
}

func (a *authService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	return a.api.UpdateProfile(ctx, upd)
}

func (a *authService) LoggedIn(ctx context.Context) (bool, error) {
	return tokens.Present(ctx, a.tokens)
}

// EnsureSession reports whether a usable session is stored. An access token
// whose exp claim has passed is refreshed first. A session the backend
// refuses to refresh is dropped and reported as absent. Transport failures
// during the refresh are logged and the stored session is kept.
func (a *authService) EnsureSession(ctx context.Context) (bool, error) {
	pair, err := a.tokens.Load(ctx)
	if err != nil {
		return false, err
	}
	if pair == nil || pair.AccessToken == "" {
		return false, nil
	}
	if !pair.Expired(time.Now()) {
		return true, nil
	}

	a.logger.Debug(ctx, "access token expired, refreshing", "expired_at", pair.ExpiresAt)
	err = a.Refresh(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrNotLoggedIn):
		return false, nil
	case errors.Is(err, common.ErrNoRefreshToken):
		if cerr := a.tokens.Clear(ctx); cerr != nil {
			return false, fmt.Errorf("token clearing error: %w", cerr)
		}
		return false, nil
	}
	a.logger.Warn(ctx, "token refresh failed, keeping session", "error", err)
	return true, nil
}

func (a *authService) clearCache(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn(ctx, "failed to clear cache", "error", err)
	}
}
