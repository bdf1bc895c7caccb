package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/employee"
	employeeerrors "github.com/premidisfinal/premidis-fin/internal/employee/errors"
	employeeMock "github.com/premidisfinal/premidis-fin/internal/employee/mock"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type serviceDeps struct {
	service   employee.Service
	repo      *employeeMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)

	return &serviceDeps{
		service:   employee.NewService(repo, dbRedis),
		repo:      repo,
		redismock: redisMock,
	}
}

func testRules() leaverule.Rules {
	return leaverule.Rules{Version: 3, Days: leaverule.DefaultDays()}
}

func storedEmployee(role string) *employee.Employee {
	return &employee.Employee{
		ID:           uuid.New(),
		Email:        "jane@premidis.cd",
		Role:         role,
		FirstName:    "Jane",
		LastName:     "Mbuyi",
		Department:   "Finance",
		Currency:     "USD",
		IsActive:     true,
		LeaveBalance: datatypes.NewJSONType(leaverule.DefaultDays()),
		LeaveTaken:   datatypes.NewJSONType(leaverule.LeaveDays{"annual": 4}),
		RulesVersion: 1,
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - snapshots the current rules", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.CreateEmployeeRequest{
			Email:     "  Jane@Premidis.CD ",
			Password:  "secret123",
			FirstName: "Jane",
			LastName:  "Mbuyi",
			Salary:    "1250.505",
			HireDate:  "2024-03-01",
		}

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "jane@premidis.cd", e.Email)
				assert.Equal(t, "employee", e.Role)
				assert.True(t, e.IsActive)
				assert.Equal(t, 3, e.RulesVersion)
				assert.Equal(t, 26, e.Balance()["annual"])
				assert.Equal(t, 12, e.Balance()["public_holidays"])
				assert.Equal(t, 0, e.Taken()["annual"])
				assert.Equal(t, "1250.51", e.Salary.StringFixed(2))
				assert.Equal(t, "USD", e.Currency)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte("secret123")))
				return nil
			})
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.Create(ctx, "admin", testRules(), req)

		require.NoError(t, err)
		assert.Equal(t, "Jane Mbuyi", resp.FullName)
		assert.Equal(t, "2024-03-01", resp.HireDate)
		assert.Equal(t, 26, resp.LeaveBalance["annual"])
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("rules change does not alias the snapshot", func(t *testing.T) {
		deps := setupServiceTest(t)
		rules := testRules()

		var stored *employee.Employee
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				stored = e
				return nil
			})
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		_, err := deps.service.Create(ctx, "admin", rules, employee.CreateEmployeeRequest{
			Email: "a@b.cd", Password: "secret123", FirstName: "A", LastName: "B",
		})
		require.NoError(t, err)

		rules.Days["annual"] = 40
		assert.Equal(t, 26, stored.Balance()["annual"])
	})

	t.Run("admin cannot create a super admin", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, "admin", testRules(), employee.CreateEmployeeRequest{
			Email: "x@y.cd", Password: "secret123", FirstName: "X", LastName: "Y", Role: "super_admin",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrRoleEscalation)
	})

	t.Run("unknown role", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, "super_admin", testRules(), employee.CreateEmployeeRequest{
			Email: "x@y.cd", Password: "secret123", FirstName: "X", LastName: "Y", Role: "intern",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidRole)
	})

	t.Run("invalid hire date", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, "admin", testRules(), employee.CreateEmployeeRequest{
			Email: "x@y.cd", Password: "secret123", FirstName: "X", LastName: "Y", HireDate: "01/03/2024",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDateFormat)
	})

	t.Run("negative salary", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, "admin", testRules(), employee.CreateEmployeeRequest{
			Email: "x@y.cd", Password: "secret123", FirstName: "X", LastName: "Y", Salary: "-1",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalary)
	})

	t.Run("duplicate email -> conflict error", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"})

		_, err := deps.service.Create(ctx, "admin", testRules(), employee.CreateEmployeeRequest{
			Email: "x@y.cd", Password: "secret123", FirstName: "X", LastName: "Y",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.Equal(t, 409, apperror.ToHTTP(err).Status)
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes paging", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			FindAll(ctx, employee.ListFilter{Department: "Finance", Page: 1, PageSize: 20}).
			Return([]employee.Employee{*storedEmployee("employee")}, int64(1), nil)

		resp, total, err := deps.service.GetAll(ctx, employee.ListFilter{Department: "Finance", PageSize: 500})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, resp, 1)
		assert.Equal(t, 4, resp[0].LeaveTaken["annual"])
	})

	t.Run("error repository", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			FindAll(ctx, gomock.Any()).
			Return(nil, int64(0), errors.New("db error"))

		resp, _, err := deps.service.GetAll(ctx, employee.ListFilter{})

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached := []employee.OptionResponse{{ID: uuid.NewString(), FullName: "Jane Mbuyi"}}
		jsonResp, _ := json.Marshal(cached)

		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).SetVal(string(jsonResp))

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, cached, resp)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		e := storedEmployee("employee")
		expected := []employee.OptionResponse{{ID: e.ID.String(), FullName: "Jane Mbuyi", Department: "Finance"}}
		jsonResp, _ := json.Marshal(expected)

		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).RedisNil()
		deps.repo.EXPECT().FindOptions(ctx).Return([]employee.Employee{*e}, nil)
		deps.redismock.ExpectSet(employee.EmployeeOptionsKey, jsonResp, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()

		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		e := storedEmployee("employee")
		dept := "Operations"
		role := "secretary"

		deps.repo.EXPECT().FindByID(ctx, e.ID.String()).Return(e, nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, got *employee.Employee) error {
				assert.Equal(t, "Operations", got.Department)
				assert.Equal(t, "secretary", got.Role)
				return nil
			})
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.Update(ctx, "admin", e.ID.String(), employee.UpdateEmployeeRequest{
			Department: &dept,
			Role:       &role,
		})

		require.NoError(t, err)
		assert.Equal(t, "Operations", resp.Department)
	})

	t.Run("admin cannot demote a super admin", func(t *testing.T) {
		deps := setupServiceTest(t)
		e := storedEmployee("super_admin")
		role := "employee"

		deps.repo.EXPECT().FindByID(ctx, e.ID.String()).Return(e, nil)

		_, err := deps.service.Update(ctx, "admin", e.ID.String(), employee.UpdateEmployeeRequest{Role: &role})

		assert.ErrorIs(t, err, employeeerrors.ErrRoleEscalation)
	})
}

func TestEmployeeService_Deactivate(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	e := storedEmployee("employee")

	deps.repo.EXPECT().FindByID(ctx, e.ID.String()).Return(e, nil)
	deps.repo.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, got *employee.Employee) error {
			assert.False(t, got.IsActive)
			return nil
		})
	deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

	resp, err := deps.service.Deactivate(ctx, e.ID.String())

	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()

		deps.repo.EXPECT().Delete(ctx, id).Return(nil)
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		assert.NoError(t, deps.service.Delete(ctx, id))
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()

		deps.repo.EXPECT().Delete(ctx, id).Return(gorm.ErrRecordNotFound)

		assert.ErrorIs(t, deps.service.Delete(ctx, id), employeeerrors.ErrEmployeeNotFound)
	})
}
