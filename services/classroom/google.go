package classroomsvc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	gclassroom "google.golang.org/api/classroom/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/classroom"
)

const activeCourseState = "ACTIVE"

type (
	// Provider builds Google Classroom fetchers, one per bearer token.
	Provider struct {
		endpoint   string
		httpClient *http.Client // base transport; nil means http.DefaultClient
		logger     core.Logger
	}

	fetcher struct {
		srv    *gclassroom.Service
		logger core.Logger
	}
)

var (
	_ classroom.Provider = (*Provider)(nil) // interface compliance check
	_ classroom.Fetcher  = (*fetcher)(nil)
)

func NewProvider(conf *core.Config, logger core.Logger) *Provider {
	return &Provider{
		endpoint: conf.Classroom.BaseURL,
		logger:   logger,
	}
}

// WithHTTPClient sets the base client the token transport is layered over.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.httpClient = client
	return p
}

func (p *Provider) NewFetcher(ctx context.Context, token string) (classroom.Fetcher, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	srv, err := gclassroom.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating classroom service")
	}
	return &fetcher{srv: srv, logger: p.logger}, nil
}

// trapAPIErr turns a googleapi.Error into a classroom.ProviderError.
func trapAPIErr(op, parent string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classroom.NewProviderError(op, parent, apiErr.Code)
	}
	return errors.Wrapf(err, "fetching %s", op)
}

func (f *fetcher) ListCourses(ctx context.Context) ([]classroom.ProviderCourse, error) {
	res, err := f.srv.Courses.List().
		TeacherId("me").
		CourseStates(activeCourseState).
		Context(ctx).
		Do()
	if err != nil {
		return nil, trapAPIErr("courses", "", err)
	}

	courses := make([]classroom.ProviderCourse, 0, len(res.Courses))
	for _, c := range res.Courses {
		if c == nil {
			continue
		}
		courses = append(courses, classroom.ProviderCourse{
			ID:             c.Id,
			Name:           c.Name,
			Description:    c.Description,
			EnrollmentCode: c.EnrollmentCode,
			OwnerID:        c.OwnerId,
		})
	}
	return courses, nil
}

// TeacherName looks up the display name of the course owner; failures only cost the name.
func (f *fetcher) TeacherName(ctx context.Context, courseID, ownerID string) string {
	if ownerID == "" {
		return ""
	}
	t, err := f.srv.Courses.Teachers.Get(courseID, ownerID).Context(ctx).Do()
	if err != nil {
		f.logger.Warn(fmt.Sprintf("fetching owner of course %s", courseID), err)
		return ""
	}
	if t.Profile == nil || t.Profile.Name == nil {
		return ""
	}
	return t.Profile.Name.FullName
}

func (f *fetcher) ListStudents(ctx context.Context, courseID string) ([]classroom.ProviderStudent, error) {
	res, err := f.srv.Courses.Students.List(courseID).Context(ctx).Do()
	if err != nil {
		return nil, trapAPIErr("students", "course "+courseID, err)
	}

	students := make([]classroom.ProviderStudent, 0, len(res.Students))
	for _, s := range res.Students {
		if s == nil {
			continue
		}
		ps := classroom.ProviderStudent{UserID: s.UserId}
		if s.Profile != nil {
			ps.Email = s.Profile.EmailAddress
			if s.Profile.Name != nil {
				ps.FullName = s.Profile.Name.FullName
			}
		}
		students = append(students, ps)
	}
	return students, nil
}

func (f *fetcher) ListAssignments(ctx context.Context, courseID string) ([]classroom.ProviderAssignment, error) {
	res, err := f.srv.Courses.CourseWork.List(courseID).Context(ctx).Do()
	if err != nil {
		return nil, trapAPIErr("assignments", "course "+courseID, err)
	}

	assignments := make([]classroom.ProviderAssignment, 0, len(res.CourseWork))
	for _, cw := range res.CourseWork {
		if cw == nil {
			continue
		}
		pa := classroom.ProviderAssignment{
			ID:          cw.Id,
			Title:       cw.Title,
			Description: cw.Description,
		}
		if cw.DueDate != nil {
			pa.DueDate = &classroom.Date{Year: int(cw.DueDate.Year), Month: int(cw.DueDate.Month), Day: int(cw.DueDate.Day)}
		}
		if cw.DueTime != nil {
			pa.DueTime = &classroom.TimeOfDay{Hours: int(cw.DueTime.Hours), Minutes: int(cw.DueTime.Minutes)}
		}
		// ungraded coursework has no max points; the API omits zero values
		if cw.MaxPoints != 0 {
			pts := cw.MaxPoints
			pa.MaxPoints = &pts
		}
		assignments = append(assignments, pa)
	}
	return assignments, nil
}

func (f *fetcher) ListSubmissions(ctx context.Context, courseID, assignmentID string) ([]classroom.ProviderSubmission, error) {
	res, err := f.srv.Courses.CourseWork.StudentSubmissions.List(courseID, assignmentID).Context(ctx).Do()
	if err != nil {
		return nil, trapAPIErr("submissions", "assignment "+assignmentID, err)
	}

	submissions := make([]classroom.ProviderSubmission, 0, len(res.StudentSubmissions))
	for _, s := range res.StudentSubmissions {
		if s == nil {
			continue
		}
		ps := classroom.ProviderSubmission{
			ID:           s.Id,
			UserID:       s.UserId,
			CourseWorkID: s.CourseWorkId,
			State:        s.State,
			History:      stateHistory(s.SubmissionHistory),
		}
		// the API omits zero values: a zero grade reads as no grade
		if s.AssignedGrade != 0 {
			grade := s.AssignedGrade
			ps.Grade = &grade
		}
		submissions = append(submissions, ps)
	}
	return submissions, nil
}

// stateHistory keeps the state changes of history, in provider order.
// Grade changes are skipped; an unparsable timestamp is kept as nil.
func stateHistory(history []*gclassroom.SubmissionHistory) []classroom.StateChange {
	changes := make([]classroom.StateChange, 0, len(history))
	for _, h := range history {
		if h == nil || h.StateHistory == nil {
			continue
		}
		change := classroom.StateChange{State: h.StateHistory.State}
		if ts, err := time.Parse(time.RFC3339Nano, h.StateHistory.StateTimestamp); err == nil {
			ts = ts.UTC()
			change.Timestamp = &ts
		}
		changes = append(changes, change)
	}
	return changes
}
