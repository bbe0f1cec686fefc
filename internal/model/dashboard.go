package model

// DashboardCounts holds the platform-wide totals shown to admins.
type DashboardCounts struct {
	Admins            int `json:"admins"`
	Teachers          int `json:"teachers"`
	Students          int `json:"students"`
	Courses           int `json:"courses"`
	ActiveCourses     int `json:"active_courses"`
	ActiveEnrollments int `json:"active_enrollments"`
	Evaluations       int `json:"evaluations"`
}
