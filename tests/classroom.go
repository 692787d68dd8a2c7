package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	gclassroom "google.golang.org/api/classroom/v1"
)

// ClassroomFixture is the data served by a fake Classroom API.
type ClassroomFixture struct {
	Courses     []*gclassroom.Course
	Students    map[string][]*gclassroom.Student           // {courseId: roster}
	CourseWork  map[string][]*gclassroom.CourseWork        // {courseId: coursework}
	Submissions map[string][]*gclassroom.StudentSubmission // {courseWorkId: submissions}
	Teachers    map[string]*gclassroom.Teacher             // {userId: teacher}
	FailOn      map[string]int                             // {"courses"|"students"|"courseWork"|"studentSubmissions"|"teachers": status}
}

// ClassroomServer fakes the Classroom REST API over a ClassroomFixture.
type ClassroomServer struct {
	*httptest.Server

	mu       sync.Mutex
	fixture  ClassroomFixture
	Requests []*http.Request
}

// NewClassroomServer starts a fake Classroom API; it is closed with the test.
func NewClassroomServer(t *testing.T, fixture ClassroomFixture) *ClassroomServer {
	s := &ClassroomServer{fixture: fixture}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the base URL to configure the classroom client with.
func (s *ClassroomServer) Endpoint() string {
	return s.URL + "/"
}

// RequestsTo counts the requests whose path ends with suffix.
func (s *ClassroomServer) RequestsTo(suffix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, r := range s.Requests {
		if strings.HasSuffix(r.URL.Path, suffix) {
			n++
		}
	}
	return n
}

func (s *ClassroomServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.Requests = append(s.Requests, r)
	s.mu.Unlock()

	if r.Header.Get("Authorization") == "" {
		s.fail(w, http.StatusUnauthorized)
		return
	}

	// v1/courses[/{id}/(students|courseWork[/{id}/studentSubmissions]|teachers/{id})]
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/"), "/"), "/")
	var op string
	var body interface{}
	switch {
	case len(parts) == 1 && parts[0] == "courses":
		op = "courses"
		body = &gclassroom.ListCoursesResponse{Courses: s.fixture.Courses}
	case len(parts) == 3 && parts[2] == "students":
		op = "students"
		body = &gclassroom.ListStudentsResponse{Students: s.fixture.Students[parts[1]]}
	case len(parts) == 3 && parts[2] == "courseWork":
		op = "courseWork"
		body = &gclassroom.ListCourseWorkResponse{CourseWork: s.fixture.CourseWork[parts[1]]}
	case len(parts) == 5 && parts[4] == "studentSubmissions":
		op = "studentSubmissions"
		body = &gclassroom.ListStudentSubmissionsResponse{StudentSubmissions: s.fixture.Submissions[parts[3]]}
	case len(parts) == 4 && parts[2] == "teachers":
		op = "teachers"
		teacher, ok := s.fixture.Teachers[parts[3]]
		if !ok {
			s.fail(w, http.StatusNotFound)
			return
		}
		body = teacher
	default:
		s.fail(w, http.StatusNotFound)
		return
	}

	if code, ok := s.fixture.FailOn[op]; ok {
		s.fail(w, code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ClassroomServer) fail(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": http.StatusText(code),
			"status":  strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")),
		},
	})
}
