package classroom

import (
	"context"
	"fmt"
	"net/http"
)

type (
	// Provider opens a Fetcher authenticated with a caller-supplied bearer token.
	Provider interface {
		NewFetcher(ctx context.Context, token string) (Fetcher, error)
	}

	// Fetcher reads one page of provider data per call.
	// A payload without items yields an empty slice, not an error.
	Fetcher interface {
		ListCourses(ctx context.Context) ([]ProviderCourse, error)
		ListStudents(ctx context.Context, courseID string) ([]ProviderStudent, error)
		ListAssignments(ctx context.Context, courseID string) ([]ProviderAssignment, error)
		ListSubmissions(ctx context.Context, courseID, assignmentID string) ([]ProviderSubmission, error)
		// TeacherName looks up the display name of a course owner; lookup failures yield "".
		TeacherName(ctx context.Context, courseID, ownerID string) string
	}
)

// ProviderError is a non-success response of the provider API.
type ProviderError struct {
	Op         string // e.g. "courses", "students"
	Parent     string // e.g. "course c1"; empty for top-level listings
	StatusCode int
	Status     string
}

func NewProviderError(op, parent string, code int) *ProviderError {
	return &ProviderError{Op: op, Parent: parent, StatusCode: code, Status: http.StatusText(code)}
}

func (e ProviderError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("Failed to fetch %s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("Failed to fetch %s for %s: %s", e.Op, e.Parent, e.Status)
}
