package classroom

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// Repository persists the mirrored classroom data.
// Upserts are keyed on natural keys: classroom_id for courses, students and assignments,
// (assignment_id, student_id) for submissions. They overwrite every mapped field.
type Repository interface {
	UpsertCourse(ctx context.Context, course Course) (Course, error)
	UpsertStudent(ctx context.Context, student Student) (Student, error)
	UpsertAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	UpsertSubmission(ctx context.Context, submission Submission) (Submission, error)

	GetCourseByClassroomID(ctx context.Context, classroomID string) (Course, error)
	GetStudentByClassroomID(ctx context.Context, classroomID string) (Student, error)
	GetAssignmentByClassroomID(ctx context.Context, classroomID string) (Assignment, error)

	QueryCourses(ctx context.Context) ([]Course, error)
	QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
	// QueryAssignments returns assignments, most recently created first.
	QueryAssignments(ctx context.Context) ([]Assignment, error)
	QuerySubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
}
