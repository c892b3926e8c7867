package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/hash"
	"github.com/Skotchmaster/todo_service/internal/logging"
	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

var (
	// ErrInvalidCredentials deliberately covers both unknown username and
	// wrong password so login responses cannot be used for enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound means a verified token points at a user that no longer
	// exists in the repository.
	ErrUserNotFound = errors.New("user not found")
	ErrInternal     = errors.New("internal error")
)

// Session is the identity attached to a request after token verification.
// Fields come from the repository record, not the token claims.
type Session struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type LoginResult struct {
	User  Session
	Token string
}

type AuthService struct {
	Repo  *repo.GormRepo
	Codec *tokens.Codec
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, salt, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, ErrInternal
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Salt:         salt,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, ErrInternal
	}

	l.Info("register_success", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown_username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, ErrInternal
	}

	if !hash.CheckPassword(password, user.PasswordHash, user.Salt) {
		l.Warn("login_failed", "status", 401, "reason", "wrong_password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.Codec.Issue(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{
		User: Session{
			ID:       user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		},
		Token: token,
	}, nil
}

// GetSession verifies the token and re-fetches the user so that deleted users
// lose access immediately and authorization fields (is_admin) always reflect
// current repository state rather than the claims minted at login.
func (s *AuthService) GetSession(ctx context.Context, token string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.session")

	claims, err := s.Codec.Verify(token)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("session_failed", "status", 404, "reason", "user_gone", "user_id", id)
			return nil, ErrUserNotFound
		}
		l.Error("session_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, ErrInternal
	}

	return &Session{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}
