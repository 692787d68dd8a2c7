package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semillerodigital/insights/core/dashboard"
	"github.com/semillerodigital/insights/tests"
)

func Test_dashboardApi_access(t *testing.T) {
	env := newTestEnv(t, testutil.ClassroomFixture{})
	coord := env.token(t, "coordinador@semillerodigital.org")
	prof := env.token(t, "profesor1@example.com")
	student := env.token(t, "maria@example.com")
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "auth required", path: "/v1/dashboard/coordinator", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "coordinator view as coordinator", path: "/v1/dashboard/coordinator", token: coord, wantCode: http.StatusOK},
		{name: "coordinator view as professor", path: "/v1/dashboard/coordinator", token: prof, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "coordinator view as student", path: "/v1/dashboard/coordinator", token: student, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "professor view as coordinator", path: "/v1/dashboard/professor", token: coord, wantCode: http.StatusOK},
		{name: "professor view as professor", path: "/v1/dashboard/professor", token: prof, wantCode: http.StatusOK},
		{name: "professor view as student", path: "/v1/dashboard/professor", token: student, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "student view as student", path: "/v1/dashboard/student", token: student, wantCode: http.StatusOK},
		{name: "student view as professor", path: "/v1/dashboard/student", token: prof, wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "unknown mode", path: "/v1/dashboard/coordinator?mode=fake", token: coord,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"mode": "mode must be one of [real mock]"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

func Test_dashboardApi_coordinator(t *testing.T) {
	env := newTestEnv(t, classroomFixture())
	coord := env.token(t, "coordinador@semillerodigital.org")

	// no data yet: mock fallback
	rec := env.do(httpTest{path: "/v1/dashboard/coordinator", token: coord})
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics dashboard.Metrics
	unmarchall(t, rec, &metrics)
	assert.Equal(t, dashboard.ModeMock, metrics.Source)
	assert.Equal(t, 144, metrics.TotalStudents)

	rec = env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httpTest{path: "/v1/dashboard/coordinator", token: coord})
	require.Equal(t, http.StatusOK, rec.Code)
	metrics = dashboard.Metrics{}
	unmarchall(t, rec, &metrics)
	assert.Equal(t, dashboard.ModeReal, metrics.Source)
	assert.Equal(t, 2, metrics.TotalStudents)
	assert.Equal(t, 1, metrics.TotalCourses)
	assert.Equal(t, 1, metrics.TotalAssignments)
	assert.Equal(t, 50, metrics.CompletionRate)
	require.Len(t, metrics.RecentAssignments, 1)
	assert.Equal(t, "HTML", metrics.RecentAssignments[0].Name)
	assert.Equal(t, 1, metrics.RecentAssignments[0].Submissions)
	assert.Equal(t, "2024-03-01", metrics.RecentAssignments[0].DueDate)
	assert.Len(t, metrics.WeeklyProgress, 4)
	require.Len(t, metrics.Cells, 1)
	assert.Equal(t, "Estudiantes Sin Asignar", metrics.Cells[0].Name)

	// explicit mock mode wins over real data
	rec = env.do(httpTest{path: "/v1/dashboard/coordinator?mode=mock", token: coord})
	metrics = dashboard.Metrics{}
	unmarchall(t, rec, &metrics)
	assert.Equal(t, dashboard.ModeMock, metrics.Source)
}

func Test_dashboardApi_student(t *testing.T) {
	env := newTestEnv(t, classroomFixture())

	rec := env.do(httpTest{method: http.MethodPost, path: "/v1/sync", body: []byte(`{"access_token": "tok3n"}`)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httpTest{path: "/v1/dashboard/student", token: env.token(t, "maria@example.com")})
	require.Equal(t, http.StatusOK, rec.Code)
	var view dashboard.StudentView
	unmarchall(t, rec, &view)
	assert.Equal(t, dashboard.ModeReal, view.Source)
	assert.Equal(t, "María Pérez", view.Name)
	assert.Equal(t, 1, view.TotalAssignments)
	assert.Equal(t, 1, view.CompletedAssignments)
	assert.Equal(t, 100, view.CompletionRate)
	require.Len(t, view.Submissions, 1)
	assert.Equal(t, "turned_in", view.Submissions[0].Status)
	assert.False(t, view.Submissions[0].Late)

	// a coordinator may look at any student
	rec = env.do(httpTest{path: "/v1/dashboard/student?email=juan@example.com", token: env.token(t, "coordinador@semillerodigital.org")})
	require.Equal(t, http.StatusOK, rec.Code)
	view = dashboard.StudentView{}
	unmarchall(t, rec, &view)
	assert.Equal(t, "Juan Gómez", view.Name)
	assert.Equal(t, 0, view.CompletedAssignments)

	// unknown student: mock view under the caller's identity
	rec = env.do(httpTest{path: "/v1/dashboard/student", token: env.token(t, "nuevo@example.com")})
	require.Equal(t, http.StatusOK, rec.Code)
	view = dashboard.StudentView{}
	unmarchall(t, rec, &view)
	assert.Equal(t, dashboard.ModeMock, view.Source)
	assert.Equal(t, "nuevo@example.com", view.Email)
}
