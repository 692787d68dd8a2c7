package dashboard

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
)

// Mode selects the dataset a view is computed from.
type Mode string

const (
	ModeReal Mode = "real"
	ModeMock Mode = "mock"
)

// ParseMode parses s; an empty s yields def.
func ParseMode(s string, def Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case ModeReal:
		return ModeReal, nil
	case ModeMock:
		return ModeMock, nil
	}
	err := errors.Errorf("unknown data mode %q", s)
	return "", core.NewValidationError(err, core.FieldError{Field: "mode", Error: "mode must be one of [real mock]"})
}

type (
	// Metrics is the coordinator and professor dashboard.
	Metrics struct {
		TotalStudents     int              `json:"totalStudents"`
		TotalCourses      int              `json:"totalCourses"`
		TotalAssignments  int              `json:"totalAssignments"`
		CompletionRate    int              `json:"completionRate"`
		Cells             []CellData       `json:"cells"`
		RecentAssignments []AssignmentData `json:"recentAssignments"`
		WeeklyProgress    []WeeklyData     `json:"weeklyProgress"`
		Source            Mode             `json:"source"`
	}

	CellData struct {
		ID         string `json:"id,omitempty"`
		Name       string `json:"name"`
		Students   int    `json:"students"`
		Completion int    `json:"completion"`
		Color      string `json:"color"`
	}

	AssignmentData struct {
		ID          string `json:"id,omitempty"`
		Name        string `json:"name"`
		Submissions int    `json:"submissions"`
		Total       int    `json:"total"`
		DueDate     string `json:"dueDate"`
		CourseID    string `json:"courseId,omitempty"`
	}

	// WeeklyData compares the work turned in during a week with the work due that week.
	WeeklyData struct {
		Week      string `json:"week"`
		Submitted int    `json:"entregas"`
		Goal      int    `json:"meta"`
	}

	// StudentView is the dashboard of a single student.
	StudentView struct {
		Name                 string              `json:"name"`
		Email                string              `json:"email"`
		TotalAssignments     int                 `json:"totalAssignments"`
		CompletedAssignments int                 `json:"completedAssignments"`
		LateSubmissions      int                 `json:"lateSubmissions"`
		CompletionRate       int                 `json:"completionRate"`
		AverageGrade         *float64            `json:"averageGrade"`
		Submissions          []StudentSubmission `json:"submissions"`
		Source               Mode                `json:"source"`
	}

	StudentSubmission struct {
		AssignmentID string     `json:"assignmentId,omitempty"`
		Title        string     `json:"title"`
		DueDate      *time.Time `json:"dueDate"`
		Status       string     `json:"status"`
		Grade        *float64   `json:"grade"`
		SubmittedAt  *time.Time `json:"submittedAt"`
		Late         bool       `json:"late"`
	}
)
