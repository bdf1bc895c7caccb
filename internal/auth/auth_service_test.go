package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/auth"
	autherrors "github.com/premidisfinal/premidis-fin/internal/auth/errors"
	authMock "github.com/premidisfinal/premidis-fin/internal/auth/mock"
	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	employeeMock "github.com/premidisfinal/premidis-fin/internal/employee/mock"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeEmployeeService struct {
	employee.Service
	created       employee.CreateEmployeeRequest
	createdByRole string
	resp          employee.EmployeeResponse
	err           error
}

func (f *fakeEmployeeService) Create(_ context.Context, actorRole string, _ leaverule.Rules, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	f.createdByRole = actorRole
	f.created = req
	return f.resp, f.err
}

func (f *fakeEmployeeService) UpdateProfile(_ context.Context, _ string, _ employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	return f.resp, f.err
}

type authDeps struct {
	service   auth.Service
	repo      *employeeMock.MockRepository
	resolver  *authMock.MockCapabilityResolver
	employees *fakeEmployeeService
}

func setupAuthService(t *testing.T) *authDeps {
	ctrl := gomock.NewController(t)
	repo := employeeMock.NewMockRepository(ctrl)
	resolver := authMock.NewMockCapabilityResolver(ctrl)
	employees := &fakeEmployeeService{}

	return &authDeps{
		service:   auth.NewService(employees, repo, resolver, auth.TokenConfig{Secret: testSecret, TTL: time.Hour}),
		repo:      repo,
		resolver:  resolver,
		employees: employees,
	}
}

func account(t *testing.T, password string, active bool) *employee.Employee {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &employee.Employee{
		ID:           uuid.New(),
		Email:        "grace@premidis.cd",
		PasswordHash: string(pw),
		Role:         "secretary",
		FirstName:    "Grace",
		LastName:     "Ilunga",
		IsActive:     active,
		LeaveBalance: datatypes.NewJSONType(leaverule.DefaultDays()),
	}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupAuthService(t)
		acc := account(t, "password123", true)

		deps.repo.EXPECT().FindByEmail(ctx, acc.Email).Return(acc, nil)
		deps.resolver.EXPECT().
			Capabilities(ctx, "secretary").
			Return(domain.NewCapabilitySet(
				domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionManage},
				domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionCreate},
			), nil)

		res, err := deps.service.Login(ctx, acc.Email, "password123")

		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, []string{"leave:create", "leave:manage"}, res.User.Permissions)
		assert.Equal(t, 26, res.User.Balance["annual"])

		claims := parseClaims(t, res.AccessToken)
		assert.Equal(t, acc.ID.String(), claims["user_id"])
		assert.Equal(t, "secretary", claims["role"])
	})

	t.Run("unknown email", func(t *testing.T) {
		deps := setupAuthService(t)

		deps.repo.EXPECT().FindByEmail(ctx, "nobody@premidis.cd").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Login(ctx, "nobody@premidis.cd", "x")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		deps := setupAuthService(t)
		acc := account(t, "password123", true)

		deps.repo.EXPECT().FindByEmail(ctx, acc.Email).Return(acc, nil)

		_, err := deps.service.Login(ctx, acc.Email, "wrongpass")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		deps := setupAuthService(t)
		acc := account(t, "password123", false)

		deps.repo.EXPECT().FindByEmail(ctx, acc.Email).Return(acc, nil)

		_, err := deps.service.Login(ctx, acc.Email, "password123")

		assert.ErrorIs(t, err, autherrors.ErrAccountInactive)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	deps := setupAuthService(t)
	id := uuid.NewString()
	deps.employees.resp = employee.EmployeeResponse{
		ID:       id,
		Email:    "new@premidis.cd",
		FullName: "New Hire",
		Role:     "employee",
	}

	deps.resolver.EXPECT().
		Capabilities(ctx, "employee").
		Return(domain.NewCapabilitySet(domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionCreate}), nil)

	res, err := deps.service.Register(ctx, leaverule.Rules{Version: 1, Days: leaverule.DefaultDays()}, auth.RegisterRequest{
		Email:     "new@premidis.cd",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Hire",
	})

	require.NoError(t, err)
	assert.Equal(t, "employee", deps.employees.createdByRole)
	assert.Empty(t, deps.employees.created.Role)
	assert.Equal(t, id, res.User.ID)
	assert.Equal(t, id, parseClaims(t, res.AccessToken)["user_id"])
}

func TestService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		deps := setupAuthService(t)
		id := uuid.NewString()

		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetMe(ctx, id)

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupAuthService(t)
		acc := account(t, "password123", true)

		deps.repo.EXPECT().FindByID(ctx, acc.ID.String()).Return(acc, nil)
		deps.resolver.EXPECT().Capabilities(ctx, "secretary").Return(domain.CapabilitySet{}, nil)

		res, err := deps.service.GetMe(ctx, acc.ID.String())

		require.NoError(t, err)
		assert.Equal(t, "Grace Ilunga", res.Name)
		assert.Empty(t, res.Permissions)
	})
}
