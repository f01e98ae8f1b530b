package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/config"
	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/oauth"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

// CredentialKind names how a user proves who they are
type CredentialKind string

const (
	CredentialPassword CredentialKind = "password"
	CredentialGoogle   CredentialKind = "google"
)

// Credentials is what a sign-in attempt presents. Password sign-in uses
// Email and Password; Google sign-in uses the authorization Code.
type Credentials struct {
	Kind     CredentialKind
	Email    string
	Password string
	Code     string
}

// Authenticator turns credentials into the principal requests run as
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (entity.Principal, error)
}

// GoogleIdentifier resolves a Google authorization code to a verified account
type GoogleIdentifier interface {
	IsConfigured() bool
	GetAuthURL(state string) string
	Identify(ctx context.Context, code string) (*oauth.GoogleUserInfo, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	google     GoogleIdentifier
	log        *logrus.Logger
	now        func() time.Time
}

var _ Authenticator = (*AuthService)(nil)

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	google GoogleIdentifier,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		google:     google,
		log:        log,
		now:        time.Now,
	}
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// Authenticate verifies credentials and returns the principal
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (entity.Principal, error) {
	user, err := s.authenticateUser(ctx, creds)
	if err != nil {
		return entity.Principal{}, err
	}
	return user.Principal(), nil
}

func (s *AuthService) authenticateUser(ctx context.Context, creds Credentials) (*entity.User, error) {
	var user *entity.User
	var err error

	switch creds.Kind {
	case CredentialPassword, "":
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(creds.Email))
		if err != nil {
			return nil, err
		}
		if user == nil || user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, creds.Password) {
			return nil, apperror.ErrInvalidCredentials
		}
	case CredentialGoogle:
		if s.google == nil || !s.google.IsConfigured() {
			return nil, apperror.NewBadRequestError("Google sign-in is not configured")
		}
		info, ierr := s.google.Identify(ctx, creds.Code)
		if ierr != nil {
			if errors.Is(ierr, oauth.ErrUnverifiedEmail) {
				return nil, apperror.ErrInvalidCredentials
			}
			s.log.WithError(ierr).Warn("google sign-in failed")
			return nil, apperror.ErrInvalidCredentials
		}
		// only existing staff accounts may sign in with Google
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(info.Email))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.ErrInvalidCredentials
		}
	default:
		return nil, apperror.NewFieldError("kind", "kind must be password or google")
	}

	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}
	return user, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginOutput, error) {
	user, err := s.authenticateUser(ctx, creds)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if _, err := s.userRepo.Update(ctx, user.ID, repository.Patch{Set: map[string]any{"lastLoginAt": now}}); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
		"kind":    creds.Kind,
	}).Info("user signed in")
	return s.issue(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}
		return nil, apperror.ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}
	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.Principal(), user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// GoogleAuthURL returns the consent page URL for Google sign-in
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return "", apperror.NewBadRequestError("Google sign-in is not configured")
	}
	return s.google.GetAuthURL(state), nil
}

// GetCurrentUser returns the signed-in user
func (s *AuthService) GetCurrentUser(ctx context.Context, p entity.Principal) (*entity.User, error) {
	id, ok := p.ObjectID()
	if !ok {
		return nil, apperror.NewNotFoundError("User")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// EnsureAdmin creates the configured admin account when no user exists yet
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if strings.TrimSpace(cfg.Email) == "" || cfg.Password == "" {
		return false, nil
	}
	n, err := s.userRepo.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}
	now := s.now().UTC()
	admin := &entity.User{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(cfg.Name),
		Email:        normalizeEmail(cfg.Email),
		PasswordHash: hash,
		Role:         enum.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	s.log.WithField("email", admin.Email).Info("seeded admin user")
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
