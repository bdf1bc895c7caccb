package rbac

import "github.com/premidisfinal/premidis-fin/internal/domain"

type catalogEntry struct {
	domain.Capability
	Label    string
	Category string
}

// catalog lists every capability a role can be granted.
var catalog = []catalogEntry{
	{capOf(domain.ResourceLeave, domain.ActionCreate), "Submit leave requests", "leave"},
	{capOf(domain.ResourceLeave, domain.ActionRead), "View leave requests, balance and calendar", "leave"},
	{capOf(domain.ResourceLeave, domain.ActionApprove), "Approve or reject leave requests", "leave"},
	{capOf(domain.ResourceLeave, domain.ActionDelete), "Delete leave requests", "leave"},
	{capOf(domain.ResourceLeave, domain.ActionManage), "Act on other employees' leave", "leave"},
	{capOf(domain.ResourceLeaveRule, domain.ActionRead), "View leave rules", "leave"},
	{capOf(domain.ResourceLeaveRule, domain.ActionUpdate), "Change leave rules", "leave"},
	{capOf(domain.ResourceEmployee, domain.ActionRead), "View employees", "employee"},
	{capOf(domain.ResourceEmployee, domain.ActionCreate), "Create employees", "employee"},
	{capOf(domain.ResourceEmployee, domain.ActionUpdate), "Edit employees", "employee"},
	{capOf(domain.ResourceEmployee, domain.ActionDelete), "Delete employees", "employee"},
	{capOf(domain.ResourceNotification, domain.ActionRead), "Read own notifications", "communication"},
	{capOf(domain.ResourceRole, domain.ActionRead), "View roles and permissions", "administration"},
	{capOf(domain.ResourceRole, domain.ActionManage), "Change role permissions", "administration"},
}

var roleLabels = map[domain.Role]string{
	domain.RoleSuperAdmin: "Super administrator",
	domain.RoleAdmin:      "Administrator",
	domain.RoleSecretary:  "Secretary",
	domain.RoleEmployee:   "Employee",
}

func capOf(resource, action string) domain.Capability {
	return domain.Capability{Resource: resource, Action: action}
}

// DefaultPermissions is the table seeded into role_permissions when it is empty.
func DefaultPermissions() map[domain.Role][]domain.Capability {
	all := make([]domain.Capability, 0, len(catalog))
	for _, e := range catalog {
		all = append(all, e.Capability)
	}

	admin := make([]domain.Capability, 0, len(all))
	for _, c := range all {
		if c.Resource == domain.ResourceRole && c.Action == domain.ActionManage {
			continue
		}
		admin = append(admin, c)
	}

	return map[domain.Role][]domain.Capability{
		domain.RoleSuperAdmin: all,
		domain.RoleAdmin:      admin,
		domain.RoleSecretary: {
			capOf(domain.ResourceLeave, domain.ActionCreate),
			capOf(domain.ResourceLeave, domain.ActionRead),
			capOf(domain.ResourceLeave, domain.ActionApprove),
			capOf(domain.ResourceLeave, domain.ActionDelete),
			capOf(domain.ResourceLeave, domain.ActionManage),
			capOf(domain.ResourceLeaveRule, domain.ActionRead),
			capOf(domain.ResourceEmployee, domain.ActionRead),
			capOf(domain.ResourceEmployee, domain.ActionCreate),
			capOf(domain.ResourceNotification, domain.ActionRead),
		},
		domain.RoleEmployee: {
			capOf(domain.ResourceLeave, domain.ActionCreate),
			capOf(domain.ResourceLeave, domain.ActionRead),
			capOf(domain.ResourceLeave, domain.ActionDelete),
			capOf(domain.ResourceNotification, domain.ActionRead),
		},
	}
}

func lookupCatalog(key string) (catalogEntry, bool) {
	for _, e := range catalog {
		if e.Key() == key {
			return e, true
		}
	}
	return catalogEntry{}, false
}
