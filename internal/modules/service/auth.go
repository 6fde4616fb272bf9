package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/obraplan/obraplan/internal/config"
	"github.com/obraplan/obraplan/internal/infra/oauth"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/repo"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"github.com/obraplan/obraplan/internal/pkg/oauthstate"
	"github.com/obraplan/obraplan/internal/pkg/tokens"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MailPublisher dispatches mail jobs to whatever consumes the mail queue.
// The actual sender is an external collaborator.
type MailPublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// PasswordResetMail is the queue payload for one reset email.
type PasswordResetMail struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	ResetURL string `json:"reset_url"`
}

type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*model.User, *tokens.Pair, error)
	Login(ctx context.Context, email, password string) (*model.User, *tokens.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GoogleEnabled() bool
	GoogleAuthURL(redirect string) (string, error)
	GoogleCallback(ctx context.Context, code, state string) (*tokens.Pair, string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

type authService struct {
	users  UserService
	issuer *tokens.Issuer
	rdb    *redis.Client
	resets repo.ResetTokenRepo
	mail   MailPublisher
	google *oauth.Google
	cfg    *config.Config
	log    *zap.Logger
}

func NewAuthService(
	users UserService,
	issuer *tokens.Issuer,
	rdb *redis.Client,
	resets repo.ResetTokenRepo,
	mail MailPublisher,
	google *oauth.Google,
	cfg *config.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:  users,
		issuer: issuer,
		rdb:    rdb,
		resets: resets,
		mail:   mail,
		google: google,
		cfg:    cfg,
		log:    log,
	}
}

func sessionKey(refreshID string) string {
	return "session:refresh:" + refreshID
}

// issueSession creates a token pair and registers the refresh token so it
// can be revoked on logout.
func (s *authService) issueSession(ctx context.Context, u *model.User) (*tokens.Pair, error) {
	pair, err := s.issuer.NewPair(model.Principal{UserID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, sessionKey(pair.RefreshID), u.ID.String(), pair.RefreshTTL).Err(); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

func (s *authService) Register(ctx context.Context, email, name, password string) (*model.User, *tokens.Pair, error) {
	u, err := s.users.Register(ctx, email, name, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *tokens.Pair, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	p, refreshID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	if s.rdb != nil {
		n, err := s.rdb.Exists(ctx, sessionKey(refreshID)).Result()
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", apperr.Unauthorized("refresh token has been revoked")
		}
	}
	return s.issuer.AccessOnly(p)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	_, refreshID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		// An invalid token has no session to revoke.
		return nil
	}
	if s.rdb != nil {
		return s.rdb.Del(ctx, sessionKey(refreshID)).Err()
	}
	return nil
}

func (s *authService) GoogleEnabled() bool {
	return s.google != nil && s.google.Enabled()
}

func (s *authService) GoogleAuthURL(redirect string) (string, error) {
	if !s.GoogleEnabled() {
		return "", apperr.Validation("google oauth is not configured")
	}

	csrf := make([]byte, 16)
	if _, err := rand.Read(csrf); err != nil {
		return "", err
	}
	now := time.Now()
	state, err := oauthstate.Sign(s.cfg.Auth.StateSecret, oauthstate.State{
		CSRF:      hex.EncodeToString(csrf),
		Redirect:  redirect,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(10 * time.Minute).Unix(),
	})
	if err != nil {
		return "", err
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code, state string) (*tokens.Pair, string, error) {
	if !s.GoogleEnabled() {
		return nil, "", apperr.Validation("google oauth is not configured")
	}

	st, err := oauthstate.Verify(s.cfg.Auth.StateSecret, state)
	if err != nil {
		return nil, "", apperr.Unauthorized("invalid oauth state")
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnauthorized, "google token exchange failed", err)
	}

	u, err := s.users.EnsureGoogleUser(ctx, profile.Subject, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		return nil, "", err
	}

	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return pair, st.Redirect, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) || errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown emails are acknowledged the same as known ones.
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	expire := time.Duration(s.cfg.Reset.TokenExpireMin) * time.Minute
	if err := s.resets.Create(ctx, &model.PasswordResetToken{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(expire),
	}); err != nil {
		return err
	}

	job := PasswordResetMail{
		To:       u.Email,
		Name:     u.Name,
		ResetURL: fmt.Sprintf("%s/reset-password?token=%s", s.cfg.App.FrontendURL, token),
	}
	if s.mail == nil {
		s.log.Sugar().Warnw("mail queue not configured, dropping reset mail", "to", u.Email)
		return nil
	}
	return s.mail.PublishJSON(ctx, job)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	t, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("invalid or expired reset token")
		}
		return err
	}
	if time.Now().After(t.ExpiresAt) {
		return apperr.Validation("invalid or expired reset token")
	}

	if err := s.users.SetPassword(ctx, t.UserID, password); err != nil {
		return err
	}
	// A used token, and any siblings, must not be replayable.
	return s.resets.DeleteByUser(ctx, t.UserID)
}
