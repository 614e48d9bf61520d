package dto

// OverviewResponse aggregates platform-wide counts for the admin dashboard.
type OverviewResponse struct {
	TotalClasses        int64            `json:"totalClasses"`
	ClassesByStatus     map[string]int64 `json:"classesByStatus"`
	ClassesByLevel      map[string]int64 `json:"classesByLevel"`
	TotalStudents       int64            `json:"totalStudents"`
	TotalEnrollments    int64            `json:"totalEnrollments"`
	EnrollmentsByStatus map[string]int64 `json:"enrollmentsByStatus"`
	AverageProgress     float64          `json:"averageProgress"`
	CompletionRate      float64          `json:"completionRate"`
	CacheHit            bool             `json:"cacheHit"`
}

// ClassReportResponse summarizes one class for the admin report listing.
type ClassReportResponse struct {
	ClassID         uint    `json:"class_id"`
	Name            string  `json:"name"`
	Level           string  `json:"level"`
	Status          string  `json:"status"`
	TeacherID       uint    `json:"teacher_id"`
	Enrolled        int64   `json:"enrolled"`
	MaxStudents     int     `json:"max_students"`
	AverageProgress float64 `json:"average_progress"`
	AttendanceRate  float64 `json:"attendance_rate"`
}
