package classroom

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core"
)

var (
	NowFunc = time.Now // mockable

	ErrMissingToken = errors.New("Access token is required")
)

// Service mirrors the provider's classroom data into the Repository.
// A run is strictly sequential: courses, then per course its roster and assignments,
// then per assignment its submissions.
type Service struct {
	provider Provider
	repo     Repository
	validate *validator.Validate
	logger   core.Logger
	loc      *time.Location
}

func NewService(conf *core.Config, provider Provider, repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		provider: provider,
		repo:     repo,
		validate: validate,
		logger:   logger,
		loc:      conf.Classroom.Location,
	}
}

// Sync runs a full synchronization with the given bearer token.
// Any fetch failure aborts the run; the returned Result then holds the partial Stats.
// Referential misses and store failures skip the affected records only.
func (svc *Service) Sync(ctx context.Context, token string) (Result, error) {
	if core.CleanString(token) == "" {
		return Result{Timestamp: NowFunc().UTC()}, core.NewValidationError(
			ErrMissingToken, core.FieldError{Field: "access_token", Error: ErrMissingToken.Error()},
		)
	}

	start := NowFunc()
	svc.logger.Info("Starting Classroom synchronization")

	var stats Stats
	err := svc.run(ctx, token, &stats)

	end := NowFunc()
	res := Result{Stats: stats, Duration: end.Sub(start), Timestamp: end.UTC()}
	if err != nil {
		svc.logger.Error(fmt.Sprintf("Classroom synchronization failed after %v", res.Duration), err, stats)
		return res, err
	}
	svc.logger.Info(fmt.Sprintf("Classroom synchronization completed in %v", res.Duration), stats)
	return res, nil
}

func (svc *Service) run(ctx context.Context, token string, stats *Stats) error {
	fetcher, err := svc.provider.NewFetcher(ctx, token)
	if err != nil {
		return errors.Wrap(err, "opening classroom fetcher")
	}

	courses, err := fetcher.ListCourses(ctx)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	courses = accept(svc, "course", courses, stats)
	stats.Courses += len(courses)
	for _, pc := range courses {
		if pc.TeacherName == "" && pc.OwnerID != "" {
			pc.TeacherName = fetcher.TeacherName(ctx, pc.ID, pc.OwnerID)
		}
		svc.upsertCourse(ctx, pc)
	}

	for _, pc := range courses {
		students, err := fetcher.ListStudents(ctx, pc.ID)
		if err != nil {
			return errors.Wrapf(err, "listing students of course %s", pc.ID)
		}
		students = accept(svc, "student", students, stats)
		stats.Students += len(students)
		for _, ps := range students {
			svc.upsertStudent(ctx, ps)
		}

		assignments, err := fetcher.ListAssignments(ctx, pc.ID)
		if err != nil {
			return errors.Wrapf(err, "listing assignments of course %s", pc.ID)
		}
		assignments = accept(svc, "assignment", assignments, stats)
		stats.Assignments += len(assignments)
		svc.upsertAssignments(ctx, pc.ID, assignments)

		for _, pa := range assignments {
			submissions, err := fetcher.ListSubmissions(ctx, pc.ID, pa.ID)
			if err != nil {
				return errors.Wrapf(err, "listing submissions of assignment %s", pa.ID)
			}
			submissions = accept(svc, "submission", submissions, stats)
			stats.Submissions += len(submissions)
			for _, ps := range submissions {
				svc.upsertSubmission(ctx, pa.ID, ps)
			}
		}
	}
	return nil
}

// accept drops the records failing validation, counting them as rejected.
func accept[T any](svc *Service, kind string, records []T, stats *Stats) []T {
	return lo.Filter(records, func(rec T, i int) bool {
		if err := svc.validate.Struct(rec); err != nil {
			stats.Rejected++
			svc.logger.Warn(fmt.Sprintf("rejecting malformed %s at index %d", kind, i), err)
			return false
		}
		return true
	})
}

func (svc *Service) upsertCourse(ctx context.Context, pc ProviderCourse) {
	if _, err := svc.repo.UpsertCourse(ctx, toCourse(pc, NowFunc().UTC())); err != nil {
		svc.logger.Error(fmt.Sprintf("upserting course %s", pc.ID), err)
	}
}

func (svc *Service) upsertStudent(ctx context.Context, ps ProviderStudent) {
	if _, err := svc.repo.UpsertStudent(ctx, toStudent(ps, NowFunc().UTC())); err != nil {
		svc.logger.Error(fmt.Sprintf("upserting student %s", ps.UserID), err)
	}
}

// upsertAssignments abandons the whole batch when the course is missing locally.
func (svc *Service) upsertAssignments(ctx context.Context, courseClassroomID string, assignments []ProviderAssignment) {
	if len(assignments) == 0 {
		return
	}
	course, err := svc.repo.GetCourseByClassroomID(ctx, courseClassroomID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("course %s not found, skipping %d assignments", courseClassroomID, len(assignments)), err)
		return
	}
	for _, pa := range assignments {
		if _, err := svc.repo.UpsertAssignment(ctx, toAssignment(pa, course.ID, svc.loc, NowFunc().UTC())); err != nil {
			svc.logger.Error(fmt.Sprintf("upserting assignment %s", pa.ID), err)
		}
	}
}

// upsertSubmission skips the submission when its assignment or student is missing locally.
func (svc *Service) upsertSubmission(ctx context.Context, assignmentClassroomID string, ps ProviderSubmission) {
	assignment, err := svc.repo.GetAssignmentByClassroomID(ctx, assignmentClassroomID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("assignment %s not found, skipping submission %s", assignmentClassroomID, ps.ID), err)
		return
	}
	student, err := svc.repo.GetStudentByClassroomID(ctx, ps.UserID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("student %s not found, skipping submission %s", ps.UserID, ps.ID), err)
		return
	}
	if _, err := svc.repo.UpsertSubmission(ctx, toSubmission(ps, assignment.ID, student.ID, NowFunc().UTC())); err != nil {
		svc.logger.Error(fmt.Sprintf("upserting submission %s", ps.ID), err)
	}
}
