package permission

import "testing"

func TestAdminRoleGrants(t *testing.T) {
	table := DefaultTable()

	granted := []Permission{
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
	}
	for _, p := range granted {
		if !table.HasPermission(RoleAdmin, p) {
			t.Errorf("admin should hold %q", p)
		}
	}

	denied := []Permission{
		PermManageUsers,
		PermManageSystemSettings,
		PermManagePermissions,
		PermViewLogs,
		PermFullAdminAccess,
	}
	for _, p := range denied {
		if table.HasPermission(RoleAdmin, p) {
			t.Errorf("admin must not hold %q", p)
		}
	}
}

func TestSuperAdminBypassesEveryCheck(t *testing.T) {
	table := DefaultTable()

	if !table.HasPermission(RoleSuperAdmin, PermManageBackup) {
		t.Error("super_admin should hold manage_backup")
	}
	// Even permissions the table has never heard of pass
	if !table.HasPermission(RoleSuperAdmin, Permission("does_not_exist")) {
		t.Error("super_admin should pass unknown permission names")
	}
	if !table.HasAnyPermission(RoleSuperAdmin, nil) {
		t.Error("super_admin should pass an empty any-check")
	}
	if !table.HasAllPermissions(RoleSuperAdmin, []Permission{"nope", "also_nope"}) {
		t.Error("super_admin should pass any all-check")
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	table := DefaultTable()

	if table.HasPermission(Role("counselor"), PermViewDashboard) {
		t.Error("unknown role must not hold any permission")
	}
	if table.HasAnyPermission(Role("counselor"), []Permission{PermViewDashboard, PermExportData}) {
		t.Error("unknown role must fail any-check")
	}
	if table.HasAllPermissions(Role("counselor"), []Permission{PermViewDashboard}) {
		t.Error("unknown role must fail non-empty all-check")
	}
}

func TestAnyAllSemantics(t *testing.T) {
	table := DefaultTable()
	mixed := []Permission{PermViewDashboard, PermManageUsers}

	if !table.HasAnyPermission(RoleAdmin, mixed) {
		t.Error("admin holds view_dashboard, any-check should pass")
	}
	if table.HasAllPermissions(RoleAdmin, mixed) {
		t.Error("admin lacks manage_users, all-check should fail")
	}
	if table.HasAnyPermission(RoleAdmin, nil) {
		t.Error("empty any-check is false for non-super roles")
	}
	if !table.HasAllPermissions(RoleAdmin, nil) {
		t.Error("empty all-check is vacuously true")
	}
}

func TestAuthorize(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		name       string
		role       Role
		required   []Permission
		requireAll bool
		want       Decision
	}{
		{"empty requirement authorizes", Role("counselor"), nil, false, Authorized},
		{"super admin always authorized", RoleSuperAdmin, []Permission{"nope"}, true, Authorized},
		{"admin any pass", RoleAdmin, []Permission{PermManageUsers, PermViewDashboard}, false, Authorized},
		{"admin any fail", RoleAdmin, []Permission{PermManageUsers, PermManageAPI}, false, Forbidden},
		{"admin all pass", RoleAdmin, []Permission{PermViewDashboard, PermExportData}, true, Authorized},
		{"admin all fail", RoleAdmin, []Permission{PermViewDashboard, PermManageUsers}, true, Forbidden},
		{"unknown role forbidden", Role("counselor"), []Permission{PermViewDashboard}, false, Forbidden},
	}
	for _, tc := range cases {
		if got := table.Authorize(tc.role, tc.required, tc.requireAll); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPermissionsReturnsCopy(t *testing.T) {
	table := DefaultTable()

	perms := table.Permissions(RoleAdmin)
	if len(perms) != 10 {
		t.Fatalf("admin permission count: got %d, want 10", len(perms))
	}

	perms[0] = Permission("mutated")
	if table.HasPermission(RoleAdmin, Permission("mutated")) {
		t.Error("mutating the returned slice must not affect the table")
	}

	if got := len(table.Permissions(RoleSuperAdmin)); got != 38 {
		t.Errorf("super_admin permission count: got %d, want 38", got)
	}
}
