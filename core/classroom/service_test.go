package classroom_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/storage/database/dummy"
	"github.com/semillerodigital/insights/tests"
)

// fakeFetcher serves in-memory provider data and records the calls it receives.
type fakeFetcher struct {
	courses     []classroom.ProviderCourse
	students    map[string][]classroom.ProviderStudent
	assignments map[string][]classroom.ProviderAssignment
	submissions map[string][]classroom.ProviderSubmission // {assignmentID: submissions}
	teachers    map[string]string                         // {ownerID: name}
	failOn      map[string]error                          // {"courses"|"students:<courseID>"|...: err}
	calls       []string
}

func (f *fakeFetcher) fail(key string) error {
	f.calls = append(f.calls, key)
	return f.failOn[key]
}

func (f *fakeFetcher) ListCourses(context.Context) ([]classroom.ProviderCourse, error) {
	if err := f.fail("courses"); err != nil {
		return nil, err
	}
	return f.courses, nil
}

func (f *fakeFetcher) ListStudents(_ context.Context, courseID string) ([]classroom.ProviderStudent, error) {
	if err := f.fail("students:" + courseID); err != nil {
		return nil, err
	}
	return f.students[courseID], nil
}

func (f *fakeFetcher) ListAssignments(_ context.Context, courseID string) ([]classroom.ProviderAssignment, error) {
	if err := f.fail("assignments:" + courseID); err != nil {
		return nil, err
	}
	return f.assignments[courseID], nil
}

func (f *fakeFetcher) TeacherName(_ context.Context, courseID, ownerID string) string {
	f.calls = append(f.calls, "teacher:"+courseID)
	return f.teachers[ownerID]
}

func (f *fakeFetcher) ListSubmissions(_ context.Context, _, assignmentID string) ([]classroom.ProviderSubmission, error) {
	if err := f.fail("submissions:" + assignmentID); err != nil {
		return nil, err
	}
	return f.submissions[assignmentID], nil
}

type fakeProvider struct {
	fetcher *fakeFetcher
	tokens  []string
}

func (p *fakeProvider) NewFetcher(_ context.Context, token string) (classroom.Fetcher, error) {
	p.tokens = append(p.tokens, token)
	return p.fetcher, nil
}

type env struct {
	db       *dummydb.DB
	repo     classroom.Repository
	logger   *testutil.Logger
	provider *fakeProvider
	svc      *classroom.Service
}

func setup(t *testing.T, f *fakeFetcher) env {
	t.Helper()
	db := dummydb.Open()
	repo := dummydb.NewClassroomRepository(db)
	logger := testutil.NewLogger()
	validate, _ := testutil.NewValidator()
	provider := &fakeProvider{fetcher: f}
	return env{
		db:       db,
		repo:     repo,
		logger:   logger,
		provider: provider,
		svc:      classroom.NewService(core.NewTestConfig(), provider, repo, validate, logger),
	}
}

func student(id string) classroom.ProviderStudent {
	return classroom.ProviderStudent{UserID: id, FullName: "Student " + id, Email: id + "@example.com"}
}

func TestService_Sync_twoCoursesNoSubmissions(t *testing.T) {
	f := &fakeFetcher{
		courses: []classroom.ProviderCourse{{ID: "c1", Name: "Frontend"}, {ID: "c2", Name: "Backend"}},
		students: map[string][]classroom.ProviderStudent{
			"c1": {student("s1"), student("s2"), student("s3")},
			"c2": {student("s3"), student("s4"), student("s5")},
		},
		assignments: map[string][]classroom.ProviderAssignment{
			"c1": {{ID: "a1", Title: "HTML"}, {ID: "a2", Title: "CSS"}},
			"c2": {{ID: "a3", Title: "SQL"}, {ID: "a4", Title: "REST"}},
		},
	}
	e := setup(t, f)
	ctx := context.Background()

	res, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)
	assert.Equal(t, classroom.Stats{Courses: 2, Students: 6, Assignments: 4, Submissions: 0}, res.Stats)
	assert.Equal(t, []string{"tok3n"}, e.provider.tokens)
	assert.False(t, res.Timestamp.IsZero())

	courses, _ := e.repo.QueryCourses(ctx)
	assert.Len(t, courses, 2)
	students, _ := e.repo.QueryStudents(ctx, classroom.StudentFilter{})
	assert.Len(t, students, 5, "students shared across courses dedupe by provider id")
	assignments, _ := e.repo.QueryAssignments(ctx)
	assert.Len(t, assignments, 4)

	c1, err := e.repo.GetCourseByClassroomID(ctx, "c1")
	require.NoError(t, err)
	a1, err := e.repo.GetAssignmentByClassroomID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, a1.CourseID)

	// strictly sequential: courses, then per course roster, coursework, submissions
	assert.Equal(t, []string{
		"courses",
		"students:c1", "assignments:c1", "submissions:a1", "submissions:a2",
		"students:c2", "assignments:c2", "submissions:a3", "submissions:a4",
	}, f.calls)
}

func TestService_Sync_isIdempotent(t *testing.T) {
	f := &fakeFetcher{
		courses:     []classroom.ProviderCourse{{ID: "c1", Name: "Frontend"}},
		students:    map[string][]classroom.ProviderStudent{"c1": {student("s1")}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {{ID: "a1", Title: "HTML"}}},
		submissions: map[string][]classroom.ProviderSubmission{"a1": {{ID: "x1", UserID: "s1", State: "CREATED"}}},
	}
	e := setup(t, f)
	ctx := context.Background()

	_, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)
	first, err := e.repo.GetCourseByClassroomID(ctx, "c1")
	require.NoError(t, err)

	// upstream changes between runs
	f.courses[0].Name = "Frontend Avanzado"
	f.courses[0].Description = "React"
	f.submissions["a1"][0].State = "TURNED_IN"

	_, err = e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)

	courses, _ := e.repo.QueryCourses(ctx)
	require.Len(t, courses, 1)
	assert.Equal(t, first.ID, courses[0].ID)
	assert.Equal(t, "Frontend Avanzado", courses[0].Name)
	require.NotNil(t, courses[0].Description)
	assert.Equal(t, "React", *courses[0].Description)

	subs, _ := e.repo.QuerySubmissions(ctx, classroom.SubmissionFilter{})
	require.Len(t, subs, 1)
	assert.Equal(t, classroom.StatusTurnedIn, subs[0].Status)
}

func TestService_Sync_coursesForbidden(t *testing.T) {
	f := &fakeFetcher{failOn: map[string]error{"courses": classroom.NewProviderError("courses", "", http.StatusForbidden)}}
	e := setup(t, f)

	res, err := e.svc.Sync(context.Background(), "tok3n")
	require.Error(t, err)
	assert.Equal(t, classroom.Stats{}, res.Stats)
	assert.Equal(t, []string{"courses"}, f.calls)

	var pErr *classroom.ProviderError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "Failed to fetch courses: Forbidden", errors.Cause(err).Error())
}

func TestService_Sync_abortsOnNestedFetchError(t *testing.T) {
	f := &fakeFetcher{
		courses:     []classroom.ProviderCourse{{ID: "c1"}, {ID: "c2"}},
		students:    map[string][]classroom.ProviderStudent{"c1": {student("s1"), student("s2")}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {{ID: "a1"}}},
		failOn:      map[string]error{"submissions:a1": classroom.NewProviderError("submissions", "assignment a1", http.StatusInternalServerError)},
	}
	e := setup(t, f)

	res, err := e.svc.Sync(context.Background(), "tok3n")
	require.Error(t, err)
	assert.Equal(t, classroom.Stats{Courses: 2, Students: 2, Assignments: 1}, res.Stats, "partial stats")
	assert.NotContains(t, f.calls, "students:c2", "remaining iterations are aborted")

	// what was committed before the failure stays
	_, err = e.repo.GetAssignmentByClassroomID(context.Background(), "a1")
	assert.NoError(t, err)
}

func TestService_Sync_missingParentsAreSkipped(t *testing.T) {
	f := &fakeFetcher{
		courses:     []classroom.ProviderCourse{{ID: "c1"}},
		students:    map[string][]classroom.ProviderStudent{"c1": {student("s1")}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {{ID: "a1"}}},
		submissions: map[string][]classroom.ProviderSubmission{"a1": {
			{ID: "x1", UserID: "s1", State: "TURNED_IN"},
			{ID: "x2", UserID: "ghost", State: "TURNED_IN"},
		}},
	}
	e := setup(t, f)
	ctx := context.Background()

	res, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Submissions, "counters count fetched records")

	subs, _ := e.repo.QuerySubmissions(ctx, classroom.SubmissionFilter{})
	require.Len(t, subs, 1)
	s1, _ := e.repo.GetStudentByClassroomID(ctx, "s1")
	assert.Equal(t, s1.ID, subs[0].StudentID)
	assert.GreaterOrEqual(t, e.logger.Count("warn"), 1)
}

func TestService_Sync_missingCourseSkipsAssignmentBatch(t *testing.T) {
	f := &fakeFetcher{
		courses:     []classroom.ProviderCourse{{ID: "c1"}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {{ID: "a1"}, {ID: "a2"}}},
		submissions: map[string][]classroom.ProviderSubmission{"a1": {{ID: "x1", UserID: "s1"}}},
	}
	e := setup(t, f)
	e.db.FailOn("UpsertCourse", fmt.Errorf("connection reset"))
	ctx := context.Background()

	res, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err, "store failures do not abort the run")
	assert.Equal(t, classroom.Stats{Courses: 1, Assignments: 2, Submissions: 1}, res.Stats)

	assignments, _ := e.repo.QueryAssignments(ctx)
	assert.Empty(t, assignments)
	subs, _ := e.repo.QuerySubmissions(ctx, classroom.SubmissionFilter{})
	assert.Empty(t, subs)
	assert.Contains(t, f.calls, "submissions:a1", "submissions are still fetched")
	assert.Equal(t, 1, e.logger.Count("error"), "one failed course upsert")
}

func TestService_Sync_storeFailuresAreLoggedAndSkipped(t *testing.T) {
	f := &fakeFetcher{
		courses:  []classroom.ProviderCourse{{ID: "c1"}},
		students: map[string][]classroom.ProviderStudent{"c1": {student("s1"), student("s2")}},
	}
	e := setup(t, f)
	e.db.FailOn("UpsertStudent", fmt.Errorf("deadlock detected"))

	res, err := e.svc.Sync(context.Background(), "tok3n")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Students)
	assert.Equal(t, 2, e.logger.Count("error"))
}

func TestService_Sync_rejectsMalformedRecords(t *testing.T) {
	bad := 13
	f := &fakeFetcher{
		courses: []classroom.ProviderCourse{{ID: "c1"}, {ID: ""}},
		students: map[string][]classroom.ProviderStudent{"c1": {
			student("s1"),
			{UserID: "s2", Email: "not-an-email"},
			{UserID: ""},
		}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {
			{ID: "a1", DueDate: &classroom.Date{Year: 2024, Month: bad, Day: 1}},
			{ID: "a2", DueDate: &classroom.Date{Year: 2024, Month: 2, Day: 1}, DueTime: &classroom.TimeOfDay{Hours: 9}},
		}},
		submissions: map[string][]classroom.ProviderSubmission{"a2": {{ID: "x1", UserID: ""}}},
	}
	e := setup(t, f)
	ctx := context.Background()

	res, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)
	assert.Equal(t, classroom.Stats{Courses: 1, Students: 1, Assignments: 1, Submissions: 0, Rejected: 5}, res.Stats)
	assert.NotContains(t, f.calls, "submissions:a1")

	a2, err := e.repo.GetAssignmentByClassroomID(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), *a2.DueDate)
}

func TestService_Sync_looksUpOwnersOfAcceptedCoursesOnly(t *testing.T) {
	f := &fakeFetcher{
		courses: []classroom.ProviderCourse{
			{ID: "c1", Name: "Frontend", OwnerID: "t1"},
			{ID: "", Name: "Huérfano", OwnerID: "t2"},
			{ID: "c3", Name: "Backend", OwnerID: "t3", TeacherName: "Luis Pérez"},
		},
		teachers: map[string]string{"t1": "Ana Martínez", "t2": "Nadie", "t3": "Otro"},
	}
	e := setup(t, f)
	ctx := context.Background()

	res, err := e.svc.Sync(ctx, "tok3n")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Rejected)
	assert.Equal(t, []string{"teacher:c1"}, lo.Filter(f.calls, func(c string, _ int) bool {
		return strings.HasPrefix(c, "teacher:")
	}))

	c1, err := e.repo.GetCourseByClassroomID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, c1.TeacherName)
	assert.Equal(t, "Ana Martínez", *c1.TeacherName)
	c3, err := e.repo.GetCourseByClassroomID(ctx, "c3")
	require.NoError(t, err)
	require.NotNil(t, c3.TeacherName)
	assert.Equal(t, "Luis Pérez", *c3.TeacherName)
}

func TestService_Sync_submittedAtFirstTurnedInWins(t *testing.T) {
	first := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	f := &fakeFetcher{
		courses:     []classroom.ProviderCourse{{ID: "c1"}},
		students:    map[string][]classroom.ProviderStudent{"c1": {student("s1")}},
		assignments: map[string][]classroom.ProviderAssignment{"c1": {{ID: "a1"}}},
		submissions: map[string][]classroom.ProviderSubmission{"a1": {{
			ID: "x1", UserID: "s1", State: "TURNED_IN",
			History: []classroom.StateChange{
				{State: "TURNED_IN", Timestamp: &first},
				{State: "RECLAIMED_BY_STUDENT", Timestamp: &first},
				{State: "TURNED_IN", Timestamp: &second},
			},
		}}},
	}
	e := setup(t, f)

	_, err := e.svc.Sync(context.Background(), "tok3n")
	require.NoError(t, err)

	subs, _ := e.repo.QuerySubmissions(context.Background(), classroom.SubmissionFilter{})
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].SubmittedAt)
	assert.Equal(t, first, *subs[0].SubmittedAt)
}

func TestService_Sync_missingToken(t *testing.T) {
	e := setup(t, &fakeFetcher{})

	_, err := e.svc.Sync(context.Background(), "  ")
	require.Error(t, err)
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "access_token", vErr.Fields[0].Field)
	assert.Empty(t, e.provider.tokens, "no network call without a token")
}
