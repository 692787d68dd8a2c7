package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/classroom"
)

type (
	courseRow struct {
		ID             string      `db:"id"`
		ClassroomID    string      `db:"classroom_id"`
		Name           string      `db:"name"`
		Description    null.String `db:"description"`
		EnrollmentCode null.String `db:"enrollment_code"`
		TeacherName    null.String `db:"teacher_name"`
		CreatedAt      time.Time   `db:"created_at"`
		UpdatedAt      time.Time   `db:"updated_at"`
	}

	studentRow struct {
		ID          string    `db:"id"`
		ClassroomID string    `db:"classroom_id"`
		Name        string    `db:"name"`
		Email       string    `db:"email"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	assignmentRow struct {
		ID          string       `db:"id"`
		ClassroomID string       `db:"classroom_id"`
		CourseID    string       `db:"course_id"`
		Title       string       `db:"title"`
		Description null.String  `db:"description"`
		DueDate     null.Time    `db:"due_date"`
		MaxPoints   null.Float64 `db:"max_points"`
		CreatedAt   time.Time    `db:"created_at"`
		UpdatedAt   time.Time    `db:"updated_at"`
	}

	submissionRow struct {
		ID           string       `db:"id"`
		AssignmentID string       `db:"assignment_id"`
		StudentID    string       `db:"student_id"`
		Status       string       `db:"status"`
		Grade        null.Float64 `db:"grade"`
		SubmittedAt  null.Time    `db:"submitted_at"`
		CreatedAt    time.Time    `db:"created_at"`
		UpdatedAt    time.Time    `db:"updated_at"`
	}
)

const (
	courseColumns     = "id, classroom_id, name, description, enrollment_code, teacher_name, created_at, updated_at"
	studentColumns    = "id, classroom_id, name, email, created_at, updated_at"
	assignmentColumns = "id, classroom_id, course_id, title, description, due_date, max_points, created_at, updated_at"
	submissionColumns = "id, assignment_id, student_id, status, grade, submitted_at, created_at, updated_at"
)

type classroomRepository struct {
	exec core.DBExecutor
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(exec core.DBExecutor) classroom.Repository {
	return &classroomRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to classroom.ErrNotFound
func (repo classroomRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return classroom.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func timestamps(created, updated time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return created.UTC(), updated.UTC()
}

func (repo classroomRepository) UpsertCourse(ctx context.Context, course classroom.Course) (classroom.Course, error) {
	created, updated := timestamps(course.CreatedAt, course.UpdatedAt)
	row := courseRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (classroom_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			enrollment_code = EXCLUDED.enrollment_code,
			teacher_name = EXCLUDED.teacher_name,
			updated_at = EXCLUDED.updated_at
		RETURNING `+courseColumns,
		uuid.NewString(), course.ClassroomID, course.Name,
		null.StringFromPtr(course.Description), null.StringFromPtr(course.EnrollmentCode), null.StringFromPtr(course.TeacherName),
		created, updated,
	).StructScan(&row)
	if err != nil {
		return classroom.Course{}, errors.Wrap(err, "upserting course")
	}
	return row.course(), nil
}

func (repo classroomRepository) UpsertStudent(ctx context.Context, student classroom.Student) (classroom.Student, error) {
	created, updated := timestamps(student.CreatedAt, student.UpdatedAt)
	row := studentRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (classroom_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
		RETURNING `+studentColumns,
		uuid.NewString(), student.ClassroomID, student.Name, student.Email, created, updated,
	).StructScan(&row)
	if err != nil {
		return classroom.Student{}, errors.Wrap(err, "upserting student")
	}
	return row.student(), nil
}

func (repo classroomRepository) UpsertAssignment(ctx context.Context, assignment classroom.Assignment) (classroom.Assignment, error) {
	created, updated := timestamps(assignment.CreatedAt, assignment.UpdatedAt)
	row := assignmentRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (classroom_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			due_date = EXCLUDED.due_date,
			max_points = EXCLUDED.max_points,
			updated_at = EXCLUDED.updated_at
		RETURNING `+assignmentColumns,
		uuid.NewString(), assignment.ClassroomID, assignment.CourseID, assignment.Title,
		null.StringFromPtr(assignment.Description), null.TimeFromPtr(assignment.DueDate), null.Float64FromPtr(assignment.MaxPoints),
		created, updated,
	).StructScan(&row)
	if err != nil {
		return classroom.Assignment{}, errors.Wrap(err, "upserting assignment")
	}
	return row.assignment(), nil
}

func (repo classroomRepository) UpsertSubmission(ctx context.Context, submission classroom.Submission) (classroom.Submission, error) {
	created, updated := timestamps(submission.CreatedAt, submission.UpdatedAt)
	row := submissionRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			status = EXCLUDED.status,
			grade = EXCLUDED.grade,
			submitted_at = EXCLUDED.submitted_at,
			updated_at = EXCLUDED.updated_at
		RETURNING `+submissionColumns,
		uuid.NewString(), submission.AssignmentID, submission.StudentID, string(submission.Status),
		null.Float64FromPtr(submission.Grade), null.TimeFromPtr(submission.SubmittedAt),
		created, updated,
	).StructScan(&row)
	if err != nil {
		return classroom.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return row.submission(), nil
}

func (repo classroomRepository) GetCourseByClassroomID(ctx context.Context, classroomID string) (classroom.Course, error) {
	row := courseRow{}
	q := "SELECT " + courseColumns + " FROM courses WHERE classroom_id = $1"
	if err := repo.exec.GetContext(ctx, &row, q, classroomID); err != nil {
		return classroom.Course{}, repo.trapNoRowsErr(err, "getting course")
	}
	return row.course(), nil
}

func (repo classroomRepository) GetStudentByClassroomID(ctx context.Context, classroomID string) (classroom.Student, error) {
	row := studentRow{}
	q := "SELECT " + studentColumns + " FROM students WHERE classroom_id = $1"
	if err := repo.exec.GetContext(ctx, &row, q, classroomID); err != nil {
		return classroom.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return row.student(), nil
}

func (repo classroomRepository) GetAssignmentByClassroomID(ctx context.Context, classroomID string) (classroom.Assignment, error) {
	row := assignmentRow{}
	q := "SELECT " + assignmentColumns + " FROM assignments WHERE classroom_id = $1"
	if err := repo.exec.GetContext(ctx, &row, q, classroomID); err != nil {
		return classroom.Assignment{}, repo.trapNoRowsErr(err, "getting assignment")
	}
	return row.assignment(), nil
}

func (repo classroomRepository) QueryCourses(ctx context.Context) ([]classroom.Course, error) {
	var rows []courseRow
	if err := repo.exec.SelectContext(ctx, &rows, "SELECT "+courseColumns+" FROM courses ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]classroom.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func (repo classroomRepository) QueryStudents(ctx context.Context, filter classroom.StudentFilter) ([]classroom.Student, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []classroom.Student{}, nil
	}

	var (
		where []string
		args  []interface{}
	)
	if filter.Email != "" {
		where = append(where, "lower(email) = lower(?)")
		args = append(args, filter.Email)
	}
	if filter.IDs != nil {
		where = append(where, "id IN (?)")
		args = append(args, filter.IDs)
	}
	ordering := core.DBOrdering{Field: "name", Ascending: true}
	if filter.OrderedBy == "created_at" {
		ordering = core.DBOrdering{Field: "created_at", Ascending: true}
	}

	q := "SELECT " + studentColumns + " FROM students" + whereClause(where) + " ORDER BY " + ordering.String()
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}

	var rows []studentRow
	if err := repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]classroom.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo classroomRepository) QueryAssignments(ctx context.Context) ([]classroom.Assignment, error) {
	var rows []assignmentRow
	q := "SELECT " + assignmentColumns + " FROM assignments ORDER BY created_at DESC, id"
	if err := repo.exec.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]classroom.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.assignment())
	}
	return assignments, nil
}

func (repo classroomRepository) QuerySubmissions(ctx context.Context, filter classroom.SubmissionFilter) ([]classroom.Submission, error) {
	if filter.StudentIDs != nil && len(filter.StudentIDs) == 0 {
		return []classroom.Submission{}, nil
	}

	var (
		where []string
		args  []interface{}
	)
	if filter.AssignmentID != "" {
		where = append(where, "assignment_id = ?")
		args = append(args, filter.AssignmentID)
	}
	if filter.StudentIDs != nil {
		where = append(where, "student_id IN (?)")
		args = append(args, filter.StudentIDs)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	q := "SELECT " + submissionColumns + " FROM submissions" + whereClause(where) + " ORDER BY id"
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building submissions query")
	}

	var rows []submissionRow
	if err := repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	submissions := make([]classroom.Submission, 0, len(rows))
	for _, r := range rows {
		submissions = append(submissions, r.submission())
	}
	return submissions, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return fmt.Sprintf(" WHERE %s", strings.Join(conds, " AND "))
}

func (r courseRow) course() classroom.Course {
	return classroom.Course{
		ID:             r.ID,
		ClassroomID:    r.ClassroomID,
		Name:           r.Name,
		Description:    r.Description.Ptr(),
		EnrollmentCode: r.EnrollmentCode.Ptr(),
		TeacherName:    r.TeacherName.Ptr(),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func (r studentRow) student() classroom.Student {
	return classroom.Student{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		Name:        r.Name,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r assignmentRow) assignment() classroom.Assignment {
	a := classroom.Assignment{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description.Ptr(),
		MaxPoints:   r.MaxPoints.Ptr(),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		a.DueDate = &due
	}
	return a
}

func (r submissionRow) submission() classroom.Submission {
	s := classroom.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Status:       classroom.Status(r.Status),
		Grade:        r.Grade.Ptr(),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.SubmittedAt.Valid {
		at := r.SubmittedAt.Time.UTC()
		s.SubmittedAt = &at
	}
	return s
}
