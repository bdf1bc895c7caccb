package employee

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/domain"
	employeeerrors "github.com/premidisfinal/premidis-fin/internal/employee/errors"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

const (
	EmployeeOptionsKey = "employees:options"
	defaultCurrency    = "USD"
)

type Service interface {
	Create(ctx context.Context, actorRole string, rules leaverule.Rules, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, int64, error)
	GetOptions(ctx context.Context) ([]OptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, actorRole, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (EmployeeResponse, error)
	Deactivate(ctx context.Context, id string) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// Create stores a new employee whose leave balance is a snapshot of rules.
// Later rule changes do not touch it.
func (s *service) Create(
	ctx context.Context,
	actorRole string,
	rules leaverule.Rules,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	role, err := resolveRole(actorRole, req.Role)
	if err != nil {
		return EmployeeResponse{}, err
	}

	hireDate, err := parseOptionalDate(req.HireDate)
	if err != nil {
		return EmployeeResponse{}, err
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return EmployeeResponse{}, err
	}
	salary, err := parseSalary(req.Salary)
	if err != nil {
		return EmployeeResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	taken := make(leaverule.LeaveDays, len(rules.Days))
	for k := range rules.Days {
		taken[k] = 0
	}

	empl := &Employee{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		Role:         role.String(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Department:   strings.TrimSpace(req.Department),
		Category:     strings.TrimSpace(req.Category),
		Position:     strings.TrimSpace(req.Position),
		Phone:        strings.TrimSpace(req.Phone),
		Salary:       salary,
		Currency:     currencyOrDefault(req.Currency),
		HireDate:     hireDate,
		BirthDate:    birthDate,
		IsActive:     true,
		LeaveBalance: datatypes.NewJSONType(rules.Days.Clone()),
		LeaveTaken:   datatypes.NewJSONType(taken),
		RulesVersion: rules.Version,
	}

	if err := s.repo.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptions(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.Int("rules_version", rules.Version),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	emps, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}

	return mapToListResponse(emps), total, nil
}

func (s *service) GetOptions(ctx context.Context) ([]OptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []OptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// collapse concurrent misses into one query
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		emps, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]OptionResponse, len(emps))
		for i, e := range emps {
			resp[i] = OptionResponse{ID: e.ID.String(), FullName: e.FullName(), Department: e.Department}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, time.Hour)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]OptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, actorRole, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if req.Role != nil {
		role, err := resolveRole(actorRole, *req.Role)
		if err != nil {
			return EmployeeResponse{}, err
		}
		if empl.Role == domain.RoleSuperAdmin.String() && actorRole != domain.RoleSuperAdmin.String() {
			return EmployeeResponse{}, employeeerrors.ErrRoleEscalation
		}
		empl.Role = role.String()
	}
	if req.HireDate != nil {
		if empl.HireDate, err = parseOptionalDate(*req.HireDate); err != nil {
			return EmployeeResponse{}, err
		}
	}
	if req.BirthDate != nil {
		if empl.BirthDate, err = parseOptionalDate(*req.BirthDate); err != nil {
			return EmployeeResponse{}, err
		}
	}
	if req.Salary != nil {
		if empl.Salary, err = parseSalary(*req.Salary); err != nil {
			return EmployeeResponse{}, err
		}
	}
	if req.Currency != nil {
		empl.Currency = currencyOrDefault(*req.Currency)
	}
	assign(&empl.FirstName, req.FirstName)
	assign(&empl.LastName, req.LastName)
	assign(&empl.Department, req.Department)
	assign(&empl.Category, req.Category)
	assign(&empl.Position, req.Position)
	assign(&empl.Phone, req.Phone)
	if req.IsActive != nil {
		empl.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptions(ctx)
	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (EmployeeResponse, error) {
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	assign(&empl.FirstName, req.FirstName)
	assign(&empl.LastName, req.LastName)
	assign(&empl.Phone, req.Phone)

	if err := s.repo.Update(ctx, empl); err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptions(ctx)
	return mapToResponse(*empl), nil
}

func (s *service) Deactivate(ctx context.Context, id string) (EmployeeResponse, error) {
	active := false
	return s.Update(ctx, domain.RoleSuperAdmin.String(), id, UpdateEmployeeRequest{IsActive: &active})
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee failed", zap.String("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateOptions(ctx)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

// resolveRole defaults to employee and keeps super_admin grants to super_admins.
func resolveRole(actorRole, requested string) (domain.Role, error) {
	if strings.TrimSpace(requested) == "" {
		return domain.RoleEmployee, nil
	}
	role, ok := domain.ParseRole(requested)
	if !ok {
		return "", employeeerrors.ErrInvalidRole
	}
	if role == domain.RoleSuperAdmin && actorRole != domain.RoleSuperAdmin.String() {
		return "", employeeerrors.ErrRoleEscalation
	}
	return role, nil
}

func parseOptionalDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, employeeerrors.ErrInvalidDateFormat
	}
	return &t, nil
}

func parseSalary(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.Zero, employeeerrors.ErrInvalidSalary
	}
	return d.Round(2), nil
}

func currencyOrDefault(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return defaultCurrency
	}
	return v
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID.String(),
		Email:        e.Email,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Role:         e.Role,
		Department:   e.Department,
		Category:     e.Category,
		Position:     e.Position,
		Phone:        e.Phone,
		Salary:       e.Salary,
		Currency:     e.Currency,
		HireDate:     formatDate(e.HireDate),
		BirthDate:    formatDate(e.BirthDate),
		IsActive:     e.IsActive,
		LeaveBalance: e.Balance(),
		LeaveTaken:   e.Taken(),
		RulesVersion: e.RulesVersion,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		res[i] = mapToResponse(e)
	}
	return res
}
