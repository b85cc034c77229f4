// internal/services/auth_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/internal/validators"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

// RegisterInput is a self-registration form.
type RegisterInput struct {
	models.Profile
	Password string `json:"password" validate:"required,min=8"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hmacSecret []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		userRepo:   userRepo,
		hmacSecret: secret,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Register creates the account and signs the new user in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validators.Struct(in); err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid registration")
	}
	user, err := newUser(in.Profile, in.Password)
	if err != nil {
		return "", nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return "", nil, appErr.New(appErr.CodeConflict, "you've already signed up with that email, log in instead")
		}
		return "", nil, err
	}
	logger.L().Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))

	token, err := s.sign(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, normalizeEmail(email), &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.sign(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *authService) sign(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  s.now().Add(s.ttl).Unix(),
	})

	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return tokenString, nil
}

// newUser hashes password and builds an unsaved user from p.
func newUser(p models.Profile, password string) (*models.User, error) {
	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	u := &models.User{PasswordHash: string(ph)}
	p.Apply(u)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
