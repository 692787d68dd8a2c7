package echoapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gclassroom "google.golang.org/api/classroom/v1"

	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/tests"
)

func classroomFixture() testutil.ClassroomFixture {
	profile := func(name, email string) *gclassroom.UserProfile {
		return &gclassroom.UserProfile{Name: &gclassroom.Name{FullName: name}, EmailAddress: email}
	}
	return testutil.ClassroomFixture{
		Courses: []*gclassroom.Course{{Id: "c1", Name: "Frontend", OwnerId: "t1"}},
		Teachers: map[string]*gclassroom.Teacher{
			"t1": {UserId: "t1", Profile: profile("Ana Martínez", "profesor1@example.com")},
		},
		Students: map[string][]*gclassroom.Student{
			"c1": {
				{UserId: "s1", Profile: profile("María Pérez", "maria@example.com")},
				{UserId: "s2", Profile: profile("Juan Gómez", "juan@example.com")},
			},
		},
		CourseWork: map[string][]*gclassroom.CourseWork{
			"c1": {{Id: "a1", Title: "HTML", DueDate: &gclassroom.Date{Year: 2024, Month: 3, Day: 1}}},
		},
		Submissions: map[string][]*gclassroom.StudentSubmission{
			"a1": {
				{Id: "x1", UserId: "s1", CourseWorkId: "a1", State: "TURNED_IN", SubmissionHistory: []*gclassroom.SubmissionHistory{
					{StateHistory: &gclassroom.StateHistory{State: "TURNED_IN", StateTimestamp: "2024-02-28T10:00:00Z"}},
				}},
				{Id: "x2", UserId: "s2", CourseWorkId: "a1", State: "CREATED"},
			},
		},
	}
}

type syncBody struct {
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	Details      string          `json:"details"`
	Duration     string          `json:"duration"`
	Stats        classroom.Stats `json:"stats"`
	PartialStats classroom.Stats `json:"partialStats"`
	Timestamp    string          `json:"timestamp"`
}

func Test_syncApi_sync(t *testing.T) {
	env := newTestEnv(t, classroomFixture())

	rec := env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body syncBody
	unmarchall(t, rec, &body)
	assert.Equal(t, "Classroom synchronization completed successfully", body.Message)
	assert.Equal(t, classroom.Stats{Courses: 1, Students: 2, Assignments: 1, Submissions: 2}, body.Stats)
	assert.True(t, strings.HasSuffix(body.Duration, "ms"), body.Duration)
	assert.NotEmpty(t, body.Timestamp)

	ctx := context.Background()
	course, err := env.classroomRepo.GetCourseByClassroomID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, course.TeacherName)
	assert.Equal(t, "Ana Martínez", *course.TeacherName)

	subs, err := env.classroomRepo.QuerySubmissions(ctx, classroom.SubmissionFilter{Status: classroom.StatusTurnedIn})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].SubmittedAt)
	assert.Equal(t, "2024-02-28T10:00:00Z", subs[0].SubmittedAt.Format("2006-01-02T15:04:05Z07:00"))

	// a second run updates in place
	rec = env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusOK, rec.Code)
	students, err := env.classroomRepo.QueryStudents(ctx, classroom.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func Test_syncApi_errors(t *testing.T) {
	env := newTestEnv(t, classroomFixture())

	tests := []httpTest{
		{
			name: "missing token", method: http.MethodPost, path: "/v1/sync", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"access_token": "Access token is required"}`),
		},
		{
			name: "blank token", method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "   "}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"access_token": "Access token is required"}`),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token":`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "GET not allowed", path: "/v1/sync",
			wantCode: http.StatusMethodNotAllowed, wantData: marchallObj(t, httpErr{Error: "Method Not Allowed"}),
		},
		{
			name: "PUT not allowed", method: http.MethodPut, path: "/v1/sync",
			wantCode: http.StatusMethodNotAllowed, wantData: marchallObj(t, httpErr{Error: "Method Not Allowed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
	assert.Zero(t, len(env.gclassroom.Requests), "no call without a token")
}

func Test_syncApi_providerFailure(t *testing.T) {
	fixture := classroomFixture()
	fixture.FailOn = map[string]int{"courses": http.StatusForbidden}
	env := newTestEnv(t, fixture)

	rec := env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body syncBody
	unmarchall(t, rec, &body)
	assert.Equal(t, "Synchronization failed", body.Error)
	assert.Equal(t, "Failed to fetch courses: Forbidden", body.Details)
	assert.Equal(t, classroom.Stats{}, body.PartialStats)
	assert.True(t, strings.HasSuffix(body.Duration, "ms"))

	courses, _ := env.classroomRepo.QueryCourses(context.Background())
	assert.Empty(t, courses)
}

func Test_syncApi_partialFailure(t *testing.T) {
	fixture := classroomFixture()
	fixture.FailOn = map[string]int{"studentSubmissions": http.StatusInternalServerError}
	env := newTestEnv(t, fixture)

	rec := env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body syncBody
	unmarchall(t, rec, &body)
	assert.Equal(t, "Failed to fetch submissions for assignment a1: Internal Server Error", body.Details)
	assert.Equal(t, classroom.Stats{Courses: 1, Students: 2, Assignments: 1}, body.PartialStats)
}
