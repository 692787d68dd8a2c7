package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
)

const (
	recentAssignmentsLimit = 4
	progressWeeks          = 4
	unassignedCellName     = "Estudiantes Sin Asignar"
	defaultCellColor       = "#50c69a"
)

var NowFunc = time.Now // mockable

type Service struct {
	classroom   classroom.Repository
	cells       cell.Repository
	logger      core.Logger
	defaultMode Mode
}

func NewService(conf *core.Config, classroomRepo classroom.Repository, cellRepo cell.Repository, logger core.Logger) *Service {
	mode, err := ParseMode(conf.Dashboard.DataMode, ModeReal)
	if err != nil {
		logger.Warn(fmt.Sprintf("invalid dashboard data mode %q, using %q", conf.Dashboard.DataMode, ModeReal), err)
		mode = ModeReal
	}
	return &Service{
		classroom:   classroomRepo,
		cells:       cellRepo,
		logger:      logger,
		defaultMode: mode,
	}
}

// Mode resolves a per-request override against the configured mode.
func (svc *Service) Mode(override string) (Mode, error) {
	return ParseMode(override, svc.defaultMode)
}

// snapshot is the real data a view is computed from.
type snapshot struct {
	courses     []classroom.Course
	students    []classroom.Student
	assignments []classroom.Assignment
	submissions []classroom.Submission
}

func (svc *Service) load(ctx context.Context, studentIDs []string) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.courses, err = svc.classroom.QueryCourses(ctx); err != nil {
		return snap, errors.Wrap(err, "querying courses")
	}
	if snap.students, err = svc.classroom.QueryStudents(ctx, classroom.StudentFilter{IDs: studentIDs}); err != nil {
		return snap, errors.Wrap(err, "querying students")
	}
	if snap.assignments, err = svc.classroom.QueryAssignments(ctx); err != nil {
		return snap, errors.Wrap(err, "querying assignments")
	}
	if snap.submissions, err = svc.classroom.QuerySubmissions(ctx, classroom.SubmissionFilter{StudentIDs: studentIDs}); err != nil {
		return snap, errors.Wrap(err, "querying submissions")
	}
	return snap, nil
}

// Coordinator computes the dashboard over every synced student.
func (svc *Service) Coordinator(ctx context.Context, mode Mode) (Metrics, error) {
	if mode == ModeMock {
		return mockMetrics(), nil
	}
	snap, err := svc.load(ctx, nil)
	if err != nil {
		return Metrics{}, err
	}
	if len(snap.students) == 0 {
		svc.logger.Info("No real data available, using mock data")
		return mockMetrics(), nil
	}
	cells, err := svc.cells.QueryCells(ctx)
	if err != nil {
		return Metrics{}, errors.Wrap(err, "querying cells")
	}
	return svc.metrics(ctx, snap, cells)
}

// Professor computes the dashboard over the students of the professor's cells.
func (svc *Service) Professor(ctx context.Context, mode Mode, email string) (Metrics, error) {
	if mode == ModeMock {
		return mockProfessorMetrics(), nil
	}
	cells, err := svc.cells.QueryProfessorCells(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return Metrics{}, errors.Wrap(err, "querying professor cells")
	}

	studentIDs := []string{}
	for _, c := range cells {
		ids, err := svc.cells.QueryCellStudentIDs(ctx, c.ID)
		if err != nil {
			return Metrics{}, errors.Wrapf(err, "querying students of cell %q", c.Name)
		}
		studentIDs = append(studentIDs, ids...)
	}
	studentIDs = lo.Uniq(studentIDs)
	if len(studentIDs) == 0 {
		svc.logger.Info(fmt.Sprintf("No students assigned to professor %s, using mock data", email))
		return mockProfessorMetrics(), nil
	}

	snap, err := svc.load(ctx, studentIDs)
	if err != nil {
		return Metrics{}, err
	}
	return svc.metrics(ctx, snap, cells)
}

func (svc *Service) metrics(ctx context.Context, snap snapshot, cells []cell.Cell) (Metrics, error) {
	now := NowFunc()
	nStudents, nAssignments := len(snap.students), len(snap.assignments)
	completed := lo.Filter(snap.submissions, func(s classroom.Submission, _ int) bool { return isCompleted(s) })

	cellData, err := svc.cellData(ctx, cells, snap)
	if err != nil {
		return Metrics{}, err
	}

	recent := lo.Map(lo.Subset(snap.assignments, 0, recentAssignmentsLimit), func(a classroom.Assignment, _ int) AssignmentData {
		due := now.Format("2006-01-02")
		if a.DueDate != nil {
			due = a.DueDate.Format("2006-01-02")
		}
		return AssignmentData{
			ID:          a.ID,
			Name:        lo.Ternary(a.Title != "", a.Title, "Tarea sin título"),
			Submissions: lo.CountBy(completed, func(s classroom.Submission) bool { return s.AssignmentID == a.ID }),
			Total:       nStudents,
			DueDate:     due,
			CourseID:    a.CourseID,
		}
	})

	return Metrics{
		TotalStudents:     nStudents,
		TotalCourses:      len(snap.courses),
		TotalAssignments:  nAssignments,
		CompletionRate:    core.Percent(len(completed), nStudents*nAssignments),
		Cells:             cellData,
		RecentAssignments: recent,
		WeeklyProgress:    WeeklyProgress(snap.assignments, snap.submissions, nStudents, now),
		Source:            ModeReal,
	}, nil
}

func (svc *Service) cellData(ctx context.Context, cells []cell.Cell, snap snapshot) ([]CellData, error) {
	if len(cells) == 0 {
		return []CellData{{Name: unassignedCellName, Color: defaultCellColor}}, nil
	}

	data := make([]CellData, 0, len(cells))
	for _, c := range cells {
		ids, err := svc.cells.QueryCellStudentIDs(ctx, c.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "querying students of cell %q", c.Name)
		}
		done := lo.CountBy(snap.submissions, func(s classroom.Submission) bool {
			return isCompleted(s) && lo.Contains(ids, s.StudentID)
		})
		data = append(data, CellData{
			ID:         c.ID,
			Name:       c.Name,
			Students:   len(ids),
			Completion: core.Percent(done, len(ids)*len(snap.assignments)),
			Color:      lo.Ternary(c.Color != "", c.Color, defaultCellColor),
		})
	}
	return data, nil
}

// Student computes the dashboard of the student with the given email.
func (svc *Service) Student(ctx context.Context, mode Mode, name, email string) (StudentView, error) {
	email = core.CleanString(email, true /* lower */)
	if mode == ModeMock {
		return mockStudentView(name, email), nil
	}

	students, err := svc.classroom.QueryStudents(ctx, classroom.StudentFilter{Email: email})
	if err != nil {
		return StudentView{}, errors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		svc.logger.Info(fmt.Sprintf("Student %s not synced yet, using mock data", email))
		return mockStudentView(name, email), nil
	}
	student := students[0]

	assignments, err := svc.classroom.QueryAssignments(ctx)
	if err != nil {
		return StudentView{}, errors.Wrap(err, "querying assignments")
	}
	submissions, err := svc.classroom.QuerySubmissions(ctx, classroom.SubmissionFilter{StudentIDs: []string{student.ID}})
	if err != nil {
		return StudentView{}, errors.Wrap(err, "querying submissions")
	}
	byAssignment := lo.KeyBy(submissions, func(s classroom.Submission) string { return s.AssignmentID })

	view := StudentView{
		Name:             student.Name,
		Email:            student.Email,
		TotalAssignments: len(assignments),
		Submissions:      make([]StudentSubmission, 0, len(assignments)),
		Source:           ModeReal,
	}
	var grades []float64
	for _, a := range assignments {
		item := StudentSubmission{
			AssignmentID: a.ID,
			Title:        a.Title,
			DueDate:      a.DueDate,
			Status:       string(classroom.StatusNew),
		}
		if s, ok := byAssignment[a.ID]; ok {
			item.Status = string(s.Status)
			item.Grade = s.Grade
			item.SubmittedAt = s.SubmittedAt
			item.Late = IsLate(a, s)
			if isCompleted(s) {
				view.CompletedAssignments++
			}
			if item.Late {
				view.LateSubmissions++
			}
			if s.Grade != nil {
				grades = append(grades, *s.Grade)
			}
		}
		view.Submissions = append(view.Submissions, item)
	}
	view.CompletionRate = core.Percent(view.CompletedAssignments, view.TotalAssignments)
	if len(grades) > 0 {
		avg := math.Round(lo.Sum(grades)/float64(len(grades))*10) / 10
		view.AverageGrade = &avg
	}
	return view, nil
}

// isCompleted reports whether the work was handed in; returned work was turned in first.
func isCompleted(s classroom.Submission) bool {
	return s.Status == classroom.StatusTurnedIn || s.Status == classroom.StatusReturned
}

// IsLate reports whether s was handed in after the due date of a.
func IsLate(a classroom.Assignment, s classroom.Submission) bool {
	return a.DueDate != nil && s.SubmittedAt != nil && s.SubmittedAt.After(*a.DueDate)
}

// WeeklyProgress buckets the last four weeks up to now, oldest first.
// Submitted counts the work handed in during the week; Goal counts the student
// and assignment pairs due that week.
func WeeklyProgress(assignments []classroom.Assignment, submissions []classroom.Submission, nStudents int, now time.Time) []WeeklyData {
	weeks := make([]WeeklyData, 0, progressWeeks)
	for k := 0; k < progressWeeks; k++ {
		from := now.AddDate(0, 0, -7*(progressWeeks-k))
		to := from.AddDate(0, 0, 7)
		in := func(t *time.Time) bool { return t != nil && !t.Before(from) && t.Before(to) }

		weeks = append(weeks, WeeklyData{
			Week:      fmt.Sprintf("Sem %d", k+1),
			Submitted: lo.CountBy(submissions, func(s classroom.Submission) bool { return isCompleted(s) && in(s.SubmittedAt) }),
			Goal:      nStudents * lo.CountBy(assignments, func(a classroom.Assignment) bool { return in(a.DueDate) }),
		})
	}
	return weeks
}
