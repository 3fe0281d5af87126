package permission

// Table is an immutable role → permission-set mapping. It is fully built at
// construction and never mutated afterwards, so lookups are safe from any
// goroutine. Roles without an entry behave as empty sets, never as errors.
type Table struct {
	roles map[Role]map[Permission]struct{}
}

// NewTable builds a frozen table from role permission lists.
func NewTable(roles map[Role][]Permission) *Table {
	t := &Table{roles: make(map[Role]map[Permission]struct{}, len(roles))}
	for role, perms := range roles {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t.roles[role] = set
	}
	return t
}

// DefaultTable returns the platform's role→permission mapping. The
// super_admin entry exists for introspection (listing effective permissions);
// the check path never consults it because super_admin bypasses lookups.
func DefaultTable() *Table {
	return NewTable(map[Role][]Permission{
		RoleSuperAdmin: {
			PermViewDashboard,
			PermManageCounselors,
			PermManageStudents,
			PermManageScholarships,
			PermViewAnalytics,
			PermManageSystemSettings,
			PermManageUsers,
			PermViewFinancialReports,
			PermManageContent,
			PermModerateReviews,
			PermSendNotifications,
			PermExportData,
			PermManagePermissions,
			PermManageUniversities,
			PermManageCourses,
			PermManageBlog,
			PermManageFAQ,
			PermViewModeration,
			PermManageReports,
			PermManageComplaints,
			PermViewLogs,
			PermManageCommunications,
			PermManageEmailCampaigns,
			PermManageSystemMessages,
			PermViewCommunicationLogs,
			PermManageFinancial,
			PermViewRevenue,
			PermManageCommissions,
			PermManagePayments,
			PermManageSystem,
			PermManageSettings,
			PermManageRoles,
			PermManageAPI,
			PermViewSystemLogs,
			PermManageBackup,
			PermViewEngagement,
			PermCreateCustomReports,
			PermFullAdminAccess,
		},
		RoleAdmin: {
			PermViewDashboard,
			PermManageCounselors,
			PermManageStudents,
			PermManageScholarships,
			PermViewAnalytics,
			PermViewFinancialReports,
			PermManageContent,
			PermModerateReviews,
			PermSendNotifications,
			PermExportData,
		},
	})
}

// HasPermission reports whether the role grants the permission. super_admin
// satisfies every check unconditionally, including names absent from the
// table.
func (t *Table) HasPermission(role Role, p Permission) bool {
	if role.IsSuperAdmin() {
		return true
	}
	_, ok := t.roles[role][p]
	return ok
}

// HasAnyPermission reports whether the role grants at least one of the
// permissions. An empty request is false for non-super roles.
func (t *Table) HasAnyPermission(role Role, perms []Permission) bool {
	if role.IsSuperAdmin() {
		return true
	}
	set := t.roles[role]
	for _, p := range perms {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role grants every permission.
// An empty request is vacuously true.
func (t *Table) HasAllPermissions(role Role, perms []Permission) bool {
	if role.IsSuperAdmin() {
		return true
	}
	set := t.roles[role]
	for _, p := range perms {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

// Permissions returns the role's permission list for introspection. The
// result is a copy; callers may not reach the frozen sets.
func (t *Table) Permissions(role Role) []Permission {
	set := t.roles[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
