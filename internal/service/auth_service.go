package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/pkg/config"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

// Legacy first-run admin credentials, replaced on first password change.
const (
	defaultAdminUsername = "Rehan"
	defaultAdminPassword = "0315"
)

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated account.
type LoginResponse struct {
	Token    string      `json:"token"`
	User     models.User `json:"user"`
	ExpireAt string      `json:"expireAt"`
}

// AuthService manages accounts and bearer tokens.
type AuthService struct {
	repo      userRepository
	cfg       config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo userRepository, cfg config.JWTConfig, v *validator.Validate, logger *zap.Logger) *AuthService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, cfg: cfg, validator: v, logger: logger, now: time.Now}
}

// EnsureDefaultUser seeds the stock admin account when no accounts exist.
func (s *AuthService) EnsureDefaultUser(ctx context.Context) error {
	return s.repo.Update(ctx, func(users []models.User) ([]models.User, error) {
		if len(users) > 0 {
			return users, nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.logger.Info("seeding default admin account", zap.String("username", defaultAdminUsername))
		return append(users, models.User{
			ID:           1,
			Username:     defaultAdminUsername,
			PasswordHash: string(hash),
			IsAdmin:      true,
			CreatedAt:    s.now().UTC().Format(time.RFC3339),
		}), nil
	})
}

// Login checks credentials and issues a bearer token. Usernames compare
// case-insensitively.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user == nil {
		// legacy bootstrap path: accept the stock credentials and seed
		if strings.EqualFold(req.Username, defaultAdminUsername) && req.Password == defaultAdminPassword {
			if err := s.EnsureDefaultUser(ctx); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed account")
			}
			user, err = s.repo.FindByUsername(ctx, defaultAdminUsername)
			if err != nil || user == nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
			}
		} else {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
	} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	expiresAt := s.now().Add(s.cfg.Expiration)
	claims := models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	out := *user
	out.PasswordHash = ""
	return &LoginResponse{Token: token, User: out, ExpireAt: expiresAt.UTC().Format(time.RFC3339)}, nil
}

// ValidateToken parses a bearer token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// CurrentUser loads the account behind a set of claims, password hash
// stripped.
func (s *AuthService) CurrentUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
	}
	out := *user
	out.PasswordHash = ""
	return &out, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	if next == "" {
		return appErrors.Clone(appErrors.ErrValidation, "new password is required")
	}
	return s.repo.Update(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if !strings.EqualFold(users[i].Username, username) {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(current)) != nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			users[i].PasswordHash = string(hash)
			return users, nil
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
	})
}

// ChangeUsername renames an account, rejecting names already taken.
func (s *AuthService) ChangeUsername(ctx context.Context, username, next string) error {
	next = strings.TrimSpace(next)
	if next == "" {
		return appErrors.Clone(appErrors.ErrValidation, "new username is required")
	}
	return s.repo.Update(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if strings.EqualFold(users[i].Username, next) && !strings.EqualFold(users[i].Username, username) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
			}
		}
		for i := range users {
			if strings.EqualFold(users[i].Username, username) {
				users[i].Username = next
				return users, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
	})
}
