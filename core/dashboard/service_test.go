package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/core/dashboard"
	"github.com/semillerodigital/insights/storage/database/dummy"
	"github.com/semillerodigital/insights/tests"
)

var now = time.Date(2024, 5, 29, 12, 0, 0, 0, time.UTC)

func date(month time.Month, day int) *time.Time {
	t := time.Date(2024, month, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func grade(g float64) *float64 { return &g }

type fixture struct {
	svc    *dashboard.Service
	logger *testutil.Logger
	ids    map[string]string // {name: student id}
}

// newFixture seeds one course with three students and two assignments:
//
//	a1 due May 10: Ana turned in on time, Beto returned late, Caro has not started
//	a2 due May 25: Ana returned late
//
// Ana and Beto belong to cell A (prof@example.com), Caro to cell B.
func newFixture(t *testing.T, conf *core.Config) *fixture {
	t.Helper()
	dashboard.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { dashboard.NowFunc = time.Now })

	ctx := context.Background()
	db := dummydb.Open()
	classroomRepo := dummydb.NewClassroomRepository(db)
	cellRepo := dummydb.NewCellRepository(db)
	f := &fixture{logger: testutil.NewLogger(), ids: map[string]string{}}

	course, err := classroomRepo.UpsertCourse(ctx, classroom.Course{ClassroomID: "c1", Name: "Frontend"})
	testutil.Must(t, err)
	for _, name := range []string{"Ana", "Beto", "Caro"} {
		s, err := classroomRepo.UpsertStudent(ctx, classroom.Student{ClassroomID: name, Name: name, Email: name + "@example.com"})
		testutil.Must(t, err)
		f.ids[name] = s.ID
	}
	a1, err := classroomRepo.UpsertAssignment(ctx, classroom.Assignment{
		ClassroomID: "a1", CourseID: course.ID, Title: "HTML", DueDate: date(5, 10), CreatedAt: *date(5, 1),
	})
	testutil.Must(t, err)
	a2, err := classroomRepo.UpsertAssignment(ctx, classroom.Assignment{
		ClassroomID: "a2", CourseID: course.ID, Title: "CSS", DueDate: date(5, 25), CreatedAt: *date(5, 20),
	})
	testutil.Must(t, err)

	for _, s := range []classroom.Submission{
		{AssignmentID: a1.ID, StudentID: f.ids["Ana"], Status: classroom.StatusTurnedIn, SubmittedAt: date(5, 9)},
		{AssignmentID: a1.ID, StudentID: f.ids["Beto"], Status: classroom.StatusReturned, SubmittedAt: date(5, 12), Grade: grade(7)},
		{AssignmentID: a1.ID, StudentID: f.ids["Caro"], Status: classroom.StatusNew},
		{AssignmentID: a2.ID, StudentID: f.ids["Ana"], Status: classroom.StatusReturned, SubmittedAt: date(5, 26), Grade: grade(9)},
	} {
		_, err := classroomRepo.UpsertSubmission(ctx, s)
		testutil.Must(t, err)
	}

	cellA, err := cellRepo.UpsertCell(ctx, cell.Cell{Name: "Célula A", Color: "#50c69a"})
	testutil.Must(t, err)
	cellB, err := cellRepo.UpsertCell(ctx, cell.Cell{Name: "Célula B"})
	testutil.Must(t, err)
	prof, err := cellRepo.UpsertProfessor(ctx, cell.Professor{Name: "Prof", Email: "prof@example.com"})
	testutil.Must(t, err)
	testutil.Must(t, cellRepo.AssignProfessor(ctx, prof.ID, cellA.ID))
	testutil.Must(t, cellRepo.AssignStudent(ctx, f.ids["Ana"], cellA.ID))
	testutil.Must(t, cellRepo.AssignStudent(ctx, f.ids["Beto"], cellA.ID))
	testutil.Must(t, cellRepo.AssignStudent(ctx, f.ids["Caro"], cellB.ID))

	f.svc = dashboard.NewService(conf, classroomRepo, cellRepo, f.logger)
	return f
}

func TestService_Coordinator(t *testing.T) {
	f := newFixture(t, core.NewTestConfig())

	m, err := f.svc.Coordinator(context.Background(), dashboard.ModeReal)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeReal, m.Source)
	assert.Equal(t, 3, m.TotalStudents)
	assert.Equal(t, 1, m.TotalCourses)
	assert.Equal(t, 2, m.TotalAssignments)
	assert.Equal(t, 50, m.CompletionRate)

	require.Len(t, m.Cells, 2)
	assert.Equal(t, "Célula A", m.Cells[0].Name)
	assert.Equal(t, 2, m.Cells[0].Students)
	assert.Equal(t, 75, m.Cells[0].Completion)
	assert.Equal(t, "#50c69a", m.Cells[1].Color, "default color")
	assert.Equal(t, 0, m.Cells[1].Completion)

	require.Len(t, m.RecentAssignments, 2)
	assert.Equal(t, "CSS", m.RecentAssignments[0].Name, "latest first")
	assert.Equal(t, 1, m.RecentAssignments[0].Submissions)
	assert.Equal(t, 3, m.RecentAssignments[0].Total)
	assert.Equal(t, "2024-05-25", m.RecentAssignments[0].DueDate)
	assert.Equal(t, 2, m.RecentAssignments[1].Submissions)

	assert.Equal(t, []dashboard.WeeklyData{
		{Week: "Sem 1", Submitted: 0, Goal: 0},
		{Week: "Sem 2", Submitted: 2, Goal: 3},
		{Week: "Sem 3", Submitted: 0, Goal: 0},
		{Week: "Sem 4", Submitted: 1, Goal: 3},
	}, m.WeeklyProgress)

	mock, err := f.svc.Coordinator(context.Background(), dashboard.ModeMock)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeMock, mock.Source)
	assert.Equal(t, 144, mock.TotalStudents)
}

func TestService_Coordinator_noData(t *testing.T) {
	db := dummydb.Open()
	logger := testutil.NewLogger()
	svc := dashboard.NewService(core.NewTestConfig(), dummydb.NewClassroomRepository(db), dummydb.NewCellRepository(db), logger)

	m, err := svc.Coordinator(context.Background(), dashboard.ModeReal)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeMock, m.Source)
	assert.Equal(t, 1, logger.Count("info"))
}

func TestService_Coordinator_unassigned(t *testing.T) {
	ctx := context.Background()
	db := dummydb.Open()
	classroomRepo := dummydb.NewClassroomRepository(db)
	_, err := classroomRepo.UpsertStudent(ctx, classroom.Student{ClassroomID: "s1", Name: "Ana"})
	require.NoError(t, err)
	svc := dashboard.NewService(core.NewTestConfig(), classroomRepo, dummydb.NewCellRepository(db), testutil.NewLogger())

	m, err := svc.Coordinator(ctx, dashboard.ModeReal)
	require.NoError(t, err)
	assert.Equal(t, []dashboard.CellData{{Name: "Estudiantes Sin Asignar", Color: "#50c69a"}}, m.Cells)
	assert.Equal(t, 0, m.CompletionRate, "no assignments")
	assert.Empty(t, m.RecentAssignments)
}

func TestService_Professor(t *testing.T) {
	f := newFixture(t, core.NewTestConfig())

	m, err := f.svc.Professor(context.Background(), dashboard.ModeReal, " PROF@example.com")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeReal, m.Source)
	assert.Equal(t, 2, m.TotalStudents)
	assert.Equal(t, 75, m.CompletionRate)
	require.Len(t, m.Cells, 1)
	assert.Equal(t, "Célula A", m.Cells[0].Name)
	assert.Equal(t, 2, m.RecentAssignments[0].Total)

	m, err = f.svc.Professor(context.Background(), dashboard.ModeReal, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeMock, m.Source)
	assert.Equal(t, 18, m.TotalStudents)
	assert.Len(t, m.Cells, 1)
}

func TestService_Student(t *testing.T) {
	f := newFixture(t, core.NewTestConfig())
	ctx := context.Background()

	v, err := f.svc.Student(ctx, dashboard.ModeReal, "", "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeReal, v.Source)
	assert.Equal(t, "Ana", v.Name)
	assert.Equal(t, 2, v.TotalAssignments)
	assert.Equal(t, 2, v.CompletedAssignments)
	assert.Equal(t, 1, v.LateSubmissions)
	assert.Equal(t, 100, v.CompletionRate)
	require.NotNil(t, v.AverageGrade)
	assert.Equal(t, 9.0, *v.AverageGrade)
	require.Len(t, v.Submissions, 2)
	assert.Equal(t, "CSS", v.Submissions[0].Title)
	assert.True(t, v.Submissions[0].Late)
	assert.Equal(t, "turned_in", v.Submissions[1].Status)
	assert.False(t, v.Submissions[1].Late)

	v, err = f.svc.Student(ctx, dashboard.ModeReal, "", "caro@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, v.CompletedAssignments)
	assert.Nil(t, v.AverageGrade)
	for _, s := range v.Submissions {
		assert.Equal(t, "new", s.Status, "missing submissions read as new")
	}

	v, err = f.svc.Student(ctx, dashboard.ModeReal, "Zoe", "zoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeMock, v.Source)
	assert.Equal(t, "Zoe", v.Name)
	assert.Equal(t, "zoe@example.com", v.Email)
}

func TestService_Mode(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Dashboard.DataMode = "mock"
	f := newFixture(t, conf)

	mode, err := f.svc.Mode("")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeMock, mode)
	mode, err = f.svc.Mode(" REAL")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeReal, mode)

	_, err = f.svc.Mode("fake")
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mode", verr.Fields[0].Field)

	conf.Dashboard.DataMode = "bogus"
	logger := testutil.NewLogger()
	svc := dashboard.NewService(conf, nil, nil, logger)
	mode, err = svc.Mode("")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ModeReal, mode)
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestIsLate(t *testing.T) {
	tests := []struct {
		name      string
		due       *time.Time
		submitted *time.Time
		want      bool
	}{
		{"on time", date(5, 10), date(5, 9), false},
		{"at the deadline", date(5, 10), date(5, 10), false},
		{"late", date(5, 10), date(5, 11), true},
		{"no due date", nil, date(5, 11), false},
		{"not submitted", date(5, 10), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dashboard.IsLate(classroom.Assignment{DueDate: tt.due}, classroom.Submission{SubmittedAt: tt.submitted})
			assert.Equal(t, tt.want, got)
		})
	}
}
