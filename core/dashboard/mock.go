package dashboard

import "time"

func mockDate(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func mockGrade(g float64) *float64 { return &g }

// mockMetrics is served in mock mode and whenever no real students are synced yet.
func mockMetrics() Metrics {
	return Metrics{
		TotalStudents:    144,
		TotalCourses:     3,
		TotalAssignments: 24,
		CompletionRate:   78,
		Cells: []CellData{
			{Name: "Célula A - Frontend", Students: 18, Completion: 85, Color: "#50c69a"},
			{Name: "Célula B - Backend", Students: 16, Completion: 72, Color: "#fa8534"},
			{Name: "Célula C - Data Analytics", Students: 20, Completion: 90, Color: "#ed3f70"},
			{Name: "Célula D - DevOps", Students: 17, Completion: 68, Color: "#2ec69d"},
			{Name: "Célula E - Mobile", Students: 19, Completion: 81, Color: "#af77f4"},
			{Name: "Célula F - UX/UI", Students: 18, Completion: 76, Color: "#fe7ea1"},
			{Name: "Célula G - Testing", Students: 16, Completion: 83, Color: "#fcaf79"},
			{Name: "Célula H - Security", Students: 20, Completion: 79, Color: "#5a25ab"},
		},
		RecentAssignments: []AssignmentData{
			{Name: "HTML Básico", Submissions: 120, Total: 144, DueDate: "2024-01-15"},
			{Name: "CSS Flexbox", Submissions: 98, Total: 144, DueDate: "2024-01-18"},
			{Name: "JavaScript Variables", Submissions: 134, Total: 144, DueDate: "2024-01-20"},
			{Name: "Responsive Design", Submissions: 87, Total: 144, DueDate: "2024-01-22"},
		},
		WeeklyProgress: []WeeklyData{
			{Week: "Sem 1", Submitted: 45, Goal: 50},
			{Week: "Sem 2", Submitted: 52, Goal: 55},
			{Week: "Sem 3", Submitted: 48, Goal: 60},
			{Week: "Sem 4", Submitted: 61, Goal: 65},
		},
		Source: ModeMock,
	}
}

// mockProfessorMetrics narrows the mock dataset to a single cell.
func mockProfessorMetrics() Metrics {
	m := mockMetrics()
	first := m.Cells[0]
	m.TotalStudents = first.Students
	m.Cells = []CellData{first}
	for i := range m.RecentAssignments {
		m.RecentAssignments[i].Total = first.Students
	}
	return m
}

func mockStudentView(name, email string) StudentView {
	return StudentView{
		Name:                 name,
		Email:                email,
		TotalAssignments:     5,
		CompletedAssignments: 3,
		LateSubmissions:      1,
		CompletionRate:       60,
		AverageGrade:         mockGrade(8.4),
		Submissions: []StudentSubmission{
			{Title: "Proyecto E-commerce con React", DueDate: mockDate("2024-01-20"), Status: "returned", Grade: mockGrade(8.5), SubmittedAt: mockDate("2024-01-19")},
			{Title: "Análisis de Datos con Python", DueDate: mockDate("2024-01-18"), Status: "returned", Grade: mockGrade(9.0), SubmittedAt: mockDate("2024-01-17")},
			{Title: "Integración con APIs", DueDate: mockDate("2024-01-25"), Status: "new"},
			{Title: "Base de Datos NoSQL", DueDate: mockDate("2024-01-15"), Status: "turned_in", Grade: mockGrade(7.8), SubmittedAt: mockDate("2024-01-16"), Late: true},
			{Title: "Testing y QA", DueDate: mockDate("2024-01-30"), Status: "new"},
		},
		Source: ModeMock,
	}
}
