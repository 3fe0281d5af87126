package permission

// Permission is a named admin capability. Keeping the vocabulary as typed
// constants gives compile-time typo detection while the runtime check stays
// plain set membership.
type Permission string

const (
	PermViewDashboard         Permission = "view_dashboard"
	PermManageCounselors      Permission = "manage_counselors"
	PermManageStudents        Permission = "manage_students"
	PermManageScholarships    Permission = "manage_scholarships"
	PermViewAnalytics         Permission = "view_analytics"
	PermManageSystemSettings  Permission = "manage_system_settings"
	PermManageUsers           Permission = "manage_users"
	PermViewFinancialReports  Permission = "view_financial_reports"
	PermManageContent         Permission = "manage_content"
	PermModerateReviews       Permission = "moderate_reviews"
	PermSendNotifications     Permission = "send_notifications"
	PermExportData            Permission = "export_data"
	PermManagePermissions     Permission = "manage_permissions"
	PermManageUniversities    Permission = "manage_universities"
	PermManageCourses         Permission = "manage_courses"
	PermManageBlog            Permission = "manage_blog"
	PermManageFAQ             Permission = "manage_faq"
	PermViewModeration        Permission = "view_moderation"
	PermManageReports         Permission = "manage_reports"
	PermManageComplaints      Permission = "manage_complaints"
	PermViewLogs              Permission = "view_logs"
	PermManageCommunications  Permission = "manage_communications"
	PermManageEmailCampaigns  Permission = "manage_email_campaigns"
	PermManageSystemMessages  Permission = "manage_system_messages"
	PermViewCommunicationLogs Permission = "view_communication_logs"
	PermManageFinancial       Permission = "manage_financial"
	PermViewRevenue           Permission = "view_revenue"
	PermManageCommissions     Permission = "manage_commissions"
	PermManagePayments        Permission = "manage_payments"
	PermManageSystem          Permission = "manage_system"
	PermManageSettings        Permission = "manage_settings"
	PermManageRoles           Permission = "manage_roles"
	PermManageAPI             Permission = "manage_api"
	PermViewSystemLogs        Permission = "view_system_logs"
	PermManageBackup          Permission = "manage_backup"
	PermViewEngagement        Permission = "view_engagement"
	PermCreateCustomReports   Permission = "create_custom_reports"
	PermFullAdminAccess       Permission = "full_admin_access"
)

// Role is a named administrator category.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// IsSuperAdmin reports whether the role bypasses all permission checks.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}
