package auth

import (
	"context"
	"errors"
	"sort"
	"time"

	autherrors "github.com/premidisfinal/premidis-fin/internal/auth/errors"
	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/shared/contextutil"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CapabilityResolver is the part of the rbac service auth needs to describe
// the caller.
type CapabilityResolver interface {
	Capabilities(ctx context.Context, role string) (domain.CapabilitySet, error)
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, rules leaverule.Rules, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, email, password string) (TokenResponse, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
	UpdateMe(ctx context.Context, userID string, req employee.UpdateProfileRequest) (AuthResponse, error)
}

type service struct {
	employees employee.Service
	repo      employee.Repository
	rbac      CapabilityResolver
	token     TokenConfig
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	employees employee.Service,
	repo employee.Repository,
	rbac CapabilityResolver,
	token TokenConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if token.TTL <= 0 {
		token.TTL = 24 * time.Hour
	}
	return &service{
		employees: employees,
		repo:      repo,
		rbac:      rbac,
		token:     token,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) Register(ctx context.Context, rules leaverule.Rules, req RegisterRequest) (TokenResponse, error) {
	created, err := s.employees.Create(ctx, domain.RoleEmployee.String(), rules, req.toEmployee())
	if err != nil {
		return TokenResponse{}, err
	}

	s.logger.Info("self registration",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("employee_id", created.ID),
	)

	user, err := s.describe(ctx, created.ID, created.Email, created.FullName, created.Role, created.Department, created.LeaveBalance)
	if err != nil {
		return TokenResponse{}, err
	}
	return s.issue(user)
}

func (s *service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	empl, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return TokenResponse{}, err
		}
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(empl.PasswordHash), []byte(password)); err != nil {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if !empl.IsActive {
		s.logger.Warn("login rejected for inactive account", zap.String("employee_id", empl.ID.String()))
		return TokenResponse{}, autherrors.ErrAccountInactive
	}

	user, err := s.describe(ctx, empl.ID.String(), empl.Email, empl.FullName(), empl.Role, empl.Department, empl.Balance())
	if err != nil {
		return TokenResponse{}, err
	}
	return s.issue(user)
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	empl, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}

	return s.describe(ctx, empl.ID.String(), empl.Email, empl.FullName(), empl.Role, empl.Department, empl.Balance())
}

func (s *service) UpdateMe(ctx context.Context, userID string, req employee.UpdateProfileRequest) (AuthResponse, error) {
	updated, err := s.employees.UpdateProfile(ctx, userID, req)
	if err != nil {
		return AuthResponse{}, err
	}

	return s.describe(ctx, updated.ID, updated.Email, updated.FullName, updated.Role, updated.Department, updated.LeaveBalance)
}

func (s *service) describe(
	ctx context.Context,
	id, email, name, role, department string,
	balance map[string]int,
) (AuthResponse, error) {
	caps, err := s.rbac.Capabilities(ctx, role)
	if err != nil {
		return AuthResponse{}, err
	}
	perms := caps.Keys()
	sort.Strings(perms)

	return AuthResponse{
		ID:          id,
		Email:       email,
		Name:        name,
		Role:        role,
		Department:  department,
		Permissions: perms,
		Balance:     balance,
	}, nil
}

func (s *service) issue(user AuthResponse) (TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.token.TTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.token.Secret))
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		User:        user,
	}, nil
}
