package model

// DashboardStats is the aggregate snapshot served by the dashboard endpoint.
type DashboardStats struct {
	Overview               StatsOverview       `json:"overview"`
	DepartmentDistribution []DepartmentStudent `json:"department_distribution"`
	SectionDistribution    []SectionStudent    `json:"section_distribution"`
}

type StatsOverview struct {
	TotalStudents    int `json:"total_students"`
	TotalDepartments int `json:"total_departments"`
	TotalSections    int `json:"total_sections"`
	TotalUsers       int `json:"total_users"`
	TotalFaculty     int `json:"total_faculty"`
}

type DepartmentStudent struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	DepartmentCode string `json:"department_code"`
	StudentCount   int    `json:"student_count"`
}

type SectionStudent struct {
	SectionID      string `json:"section_id"`
	SectionName    string `json:"section_name"`
	DepartmentName string `json:"department_name"`
	Capacity       int    `json:"capacity"`
	StudentCount   int    `json:"student_count"`
}

// UserStats is the admin-facing account summary.
type UserStats struct {
	TotalUsers   int `json:"total_users"`
	TotalAdmins  int `json:"total_admins"`
	TotalFaculty int `json:"total_faculty"`
	BannedUsers  int `json:"banned_users"`
	ActiveUsers  int `json:"active_users"`
	RecentUsers  int `json:"recent_users"`
}
