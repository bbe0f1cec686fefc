package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionUsersManage allows listing profiles and changing roles.
	PermissionUsersManage Permission = "users:manage"

	// PermissionCoursesReadAll allows viewing every course regardless of owner.
	PermissionCoursesReadAll Permission = "courses:read_all"

	// PermissionCoursesWrite allows creating courses and editing own courses.
	PermissionCoursesWrite Permission = "courses:write"

	// PermissionCoursesWriteAll allows editing any course.
	PermissionCoursesWriteAll Permission = "courses:write_all"

	// PermissionEnrollmentsManage allows enrolling other students and editing enrollments.
	PermissionEnrollmentsManage Permission = "enrollments:manage"

	// PermissionLiveClassesWrite allows scheduling live classes.
	PermissionLiveClassesWrite Permission = "live_classes:write"

	// PermissionGroupsWrite allows creating groups and managing members.
	PermissionGroupsWrite Permission = "groups:write"

	// PermissionEvaluationsReadAll allows reading every student's results.
	PermissionEvaluationsReadAll Permission = "evaluations:read_all"

	// PermissionEvaluationsWriteAll allows recording results for any student.
	PermissionEvaluationsWriteAll Permission = "evaluations:write_all"

	// PermissionStatisticsReadAll allows statistics over any dimension, including global.
	PermissionStatisticsReadAll Permission = "statistics:read_all"

	// PermissionReportsExport allows downloading evaluation workbooks.
	PermissionReportsExport Permission = "reports:export"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionUsersManage,
	PermissionCoursesReadAll,
	PermissionCoursesWrite,
	PermissionCoursesWriteAll,
	PermissionEnrollmentsManage,
	PermissionLiveClassesWrite,
	PermissionGroupsWrite,
	PermissionEvaluationsReadAll,
	PermissionEvaluationsWriteAll,
	PermissionStatisticsReadAll,
	PermissionReportsExport,
}

// RolePermissions is the fixed role → permission table.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: AllPermissions,
	RoleTeacher: {
		PermissionCoursesWrite,
		PermissionEnrollmentsManage,
		PermissionLiveClassesWrite,
		PermissionGroupsWrite,
		PermissionEvaluationsReadAll,
		PermissionEvaluationsWriteAll,
		PermissionStatisticsReadAll,
		PermissionReportsExport,
	},
	RoleStudent: {},
}
