package domain

import "strings"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleSecretary  Role = "secretary"
	RoleEmployee   Role = "employee"
)

// Roles is the closed set of roles, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleSecretary, RoleEmployee}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Resources and actions of the capability table.
const (
	ResourceLeave        = "leave"
	ResourceLeaveRule    = "leave_rule"
	ResourceEmployee     = "employee"
	ResourceNotification = "notification"
	ResourceRole         = "role"

	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionManage  = "manage"
)

type Capability struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (c Capability) Key() string {
	return c.Resource + ":" + c.Action
}

// CapabilitySet is resolved once per request from the caller's role.
type CapabilitySet map[string]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c.Key()] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Can(resource, action string) bool {
	_, ok := s[resource+":"+action]
	return ok
}

// Elevated reports whether the holder acts on other employees' leave.
func (s CapabilitySet) Elevated() bool {
	return s.Can(ResourceLeave, ActionManage)
}

func (s CapabilitySet) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type RoleResponse struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

type PermissionResponse struct {
	Key      string `json:"key"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Label    string `json:"label"`
	Category string `json:"category"`
}
