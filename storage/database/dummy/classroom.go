package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core/classroom"
)

type classroomRepository struct {
	db *classroomTables
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db.classroom}
}

func (repo *classroomRepository) fail(op string) error {
	return repo.db.failOn[op]
}

func (repo *classroomRepository) UpsertCourse(_ context.Context, course classroom.Course) (classroom.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.fail("UpsertCourse"); err != nil {
		return classroom.Course{}, err
	}

	if orig, ok := repo.db.courses[course.ClassroomID]; ok {
		course.ID, course.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		course.ID = newID()
		repo.db.seq++
		repo.db.order[course.ID] = repo.db.seq
	}
	repo.db.courses[course.ClassroomID] = &course
	return course, nil
}

func (repo *classroomRepository) UpsertStudent(_ context.Context, student classroom.Student) (classroom.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.fail("UpsertStudent"); err != nil {
		return classroom.Student{}, err
	}

	if orig, ok := repo.db.students[student.ClassroomID]; ok {
		student.ID, student.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		student.ID = newID()
	}
	repo.db.students[student.ClassroomID] = &student
	return student, nil
}

func (repo *classroomRepository) UpsertAssignment(_ context.Context, assignment classroom.Assignment) (classroom.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.fail("UpsertAssignment"); err != nil {
		return classroom.Assignment{}, err
	}

	if orig, ok := repo.db.assignments[assignment.ClassroomID]; ok {
		assignment.ID, assignment.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		assignment.ID = newID()
		repo.db.seq++
		repo.db.order[assignment.ID] = repo.db.seq
	}
	repo.db.assignments[assignment.ClassroomID] = &assignment
	return assignment, nil
}

func (repo *classroomRepository) UpsertSubmission(_ context.Context, submission classroom.Submission) (classroom.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.fail("UpsertSubmission"); err != nil {
		return classroom.Submission{}, err
	}

	key := [2]string{submission.AssignmentID, submission.StudentID}
	if orig, ok := repo.db.submissions[key]; ok {
		submission.ID, submission.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		submission.ID = newID()
	}
	repo.db.submissions[key] = &submission
	return submission, nil
}

func (repo *classroomRepository) GetCourseByClassroomID(_ context.Context, classroomID string) (classroom.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if course, ok := repo.db.courses[classroomID]; ok {
		return *course, nil
	}
	return classroom.Course{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetStudentByClassroomID(_ context.Context, classroomID string) (classroom.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if student, ok := repo.db.students[classroomID]; ok {
		return *student, nil
	}
	return classroom.Student{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetAssignmentByClassroomID(_ context.Context, classroomID string) (classroom.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if assignment, ok := repo.db.assignments[classroomID]; ok {
		return *assignment, nil
	}
	return classroom.Assignment{}, classroom.ErrNotFound
}

func (repo *classroomRepository) QueryCourses(_ context.Context) ([]classroom.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]classroom.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *classroomRepository) QueryStudents(_ context.Context, filter classroom.StudentFilter) ([]classroom.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]classroom.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if filter.Email != "" && !strings.EqualFold(s.Email, filter.Email) {
			continue
		}
		if filter.IDs != nil && !lo.Contains(filter.IDs, s.ID) {
			continue
		}
		students = append(students, *s)
	}
	if filter.OrderedBy == "created_at" {
		sort.SliceStable(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	} else {
		sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	}
	return students, nil
}

func (repo *classroomRepository) QueryAssignments(_ context.Context) ([]classroom.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]classroom.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool {
		ai, aj := assignments[i], assignments[j]
		if !ai.CreatedAt.Equal(aj.CreatedAt) {
			return ai.CreatedAt.After(aj.CreatedAt)
		}
		return repo.db.order[ai.ID] > repo.db.order[aj.ID]
	})
	return assignments, nil
}

func (repo *classroomRepository) QuerySubmissions(_ context.Context, filter classroom.SubmissionFilter) ([]classroom.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	submissions := make([]classroom.Submission, 0, len(repo.db.submissions))
	for _, s := range repo.db.submissions {
		if filter.AssignmentID != "" && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentIDs != nil && !lo.Contains(filter.StudentIDs, s.StudentID) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		submissions = append(submissions, *s)
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}
