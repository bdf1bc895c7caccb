package rbac

import (
	"context"
	"sort"
	"sync"

	"github.com/premidisfinal/premidis-fin/internal/domain"
	rbacerrors "github.com/premidisfinal/premidis-fin/internal/rbac/errors"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
	Capabilities(ctx context.Context, role string) (domain.CapabilitySet, error)
	ListPermissions(ctx context.Context) []domain.PermissionResponse
	ListRoles(ctx context.Context) ([]domain.RoleResponse, error)
	GetRole(ctx context.Context, role string) (domain.RoleResponse, error)
	UpdateRole(ctx context.Context, role string, permissions []string) (domain.RoleResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	loaded   bool
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

// LoadPolicy seeds the default table on an empty database and rebuilds the
// enforcer from role_permissions.
func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx)
}

func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	seeded, err := s.repo.SeedIfEmpty(ctx, defaultRows())
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info("rbac default permissions seeded")
	}

	rows, err := s.repo.ListRolePermissions(ctx)
	if err != nil {
		return err
	}

	s.enforcer.ClearPolicy()
	for _, row := range rows {
		if _, err := s.enforcer.AddPolicy(row.Role, row.Resource, row.Action); err != nil {
			return err
		}
	}

	s.loaded = true
	s.logger.Debug("rbac policy loaded", zap.Int("role_permissions", len(rows)))
	return nil
}

func (s *service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	return s.loadPolicyUnlocked(ctx)
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if err := s.ensureLoaded(context.Background()); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}
	return allowed, nil
}

// Capabilities returns the full capability set of a role. Unknown roles get
// an empty set.
func (s *service) Capabilities(ctx context.Context, role string) (domain.CapabilitySet, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.NewCapabilitySet(), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perms, err := s.enforcer.GetPermissionsForUser(r.String())
	if err != nil {
		return nil, err
	}

	caps := make([]domain.Capability, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		caps = append(caps, domain.Capability{Resource: p[1], Action: p[2]})
	}
	return domain.NewCapabilitySet(caps...), nil
}

func (s *service) ListPermissions(ctx context.Context) []domain.PermissionResponse {
	out := make([]domain.PermissionResponse, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, domain.PermissionResponse{
			Key:      e.Key(),
			Resource: e.Resource,
			Action:   e.Action,
			Label:    e.Label,
			Category: e.Category,
		})
	}
	return out
}

func (s *service) ListRoles(ctx context.Context) ([]domain.RoleResponse, error) {
	out := make([]domain.RoleResponse, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		resp, err := s.GetRole(ctx, r.String())
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *service) GetRole(ctx context.Context, role string) (domain.RoleResponse, error) {
	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.RoleResponse{}, rbacerrors.ErrUnknownRole
	}

	caps, err := s.Capabilities(ctx, r.String())
	if err != nil {
		return domain.RoleResponse{}, err
	}

	keys := caps.Keys()
	sort.Strings(keys)
	return domain.RoleResponse{
		Name:        r.String(),
		Label:       roleLabels[r],
		Permissions: keys,
	}, nil
}

// UpdateRole replaces a role's permissions wholesale. super_admin is fixed so
// that role management can never be locked out.
func (s *service) UpdateRole(ctx context.Context, role string, permissions []string) (domain.RoleResponse, error) {
	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.RoleResponse{}, rbacerrors.ErrUnknownRole
	}
	if r == domain.RoleSuperAdmin {
		return domain.RoleResponse{}, rbacerrors.ErrRoleLocked
	}

	seen := make(map[string]struct{}, len(permissions))
	rows := make([]RolePermissionRow, 0, len(permissions))
	for _, key := range permissions {
		entry, ok := lookupCatalog(key)
		if !ok {
			return domain.RoleResponse{}, rbacerrors.ErrUnknownPermission
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, RolePermissionRow{
			Role:     r.String(),
			Resource: entry.Resource,
			Action:   entry.Action,
		})
	}

	s.mu.Lock()
	if err := s.repo.ReplaceRolePermissions(ctx, r.String(), rows); err != nil {
		s.mu.Unlock()
		s.logger.Error("update role permissions failed", zap.String("role", r.String()), zap.Error(err))
		return domain.RoleResponse{}, err
	}
	err := s.loadPolicyUnlocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return domain.RoleResponse{}, err
	}

	s.logger.Info("role permissions updated",
		zap.String("role", r.String()),
		zap.Int("permissions", len(rows)),
	)
	return s.GetRole(ctx, r.String())
}

func defaultRows() []RolePermissionRow {
	var rows []RolePermissionRow
	for role, caps := range DefaultPermissions() {
		for _, c := range caps {
			rows = append(rows, RolePermissionRow{
				Role:     role.String(),
				Resource: c.Resource,
				Action:   c.Action,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Role != rows[j].Role {
			return rows[i].Role < rows[j].Role
		}
		if rows[i].Resource != rows[j].Resource {
			return rows[i].Resource < rows[j].Resource
		}
		return rows[i].Action < rows[j].Action
	})
	return rows
}
