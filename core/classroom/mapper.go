package classroom

import (
	"time"

	"github.com/semillerodigital/insights/core"
)

// provider submission states
const (
	stateNew                = "NEW"
	stateCreated            = "CREATED"
	stateTurnedIn           = "TURNED_IN"
	stateReturned           = "RETURNED"
	stateReclaimedByStudent = "RECLAIMED_BY_STUDENT"
)

var statuses = map[string]Status{
	stateNew:                StatusNew,
	stateCreated:            StatusNew,
	stateTurnedIn:           StatusTurnedIn,
	stateReturned:           StatusReturned,
	stateReclaimedByStudent: StatusReclaimedByStudent,
}

// MapStatus maps a provider submission state to its local Status; unknown states map to StatusNew.
func MapStatus(state string) Status {
	if st, ok := statuses[state]; ok {
		return st
	}
	return StatusNew
}

// DueDateTime combines a due date with an optional time of day, in loc.
// Without a time of day, the assignment is due at 23:59.
func DueDateTime(date *Date, tod *TimeOfDay, loc *time.Location) *time.Time {
	if date == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	hours, minutes := 23, 59
	if tod != nil {
		hours, minutes = tod.Hours, tod.Minutes
	}
	due := time.Date(date.Year, time.Month(date.Month), date.Day, hours, minutes, 0, 0, loc)
	return &due
}

// SubmittedAt returns the timestamp of the first TURNED_IN entry of history.
// The scan stops at the first match even when a later entry is more recent.
func SubmittedAt(history []StateChange) *time.Time {
	for _, change := range history {
		if change.State == stateTurnedIn {
			return change.Timestamp
		}
	}
	return nil
}

func optional(s string) *string {
	if s = core.CleanString(s); s == "" {
		return nil
	}
	return &s
}

func toCourse(pc ProviderCourse, now time.Time) Course {
	return Course{
		ClassroomID:    pc.ID,
		Name:           core.CleanString(pc.Name),
		Description:    optional(pc.Description),
		EnrollmentCode: optional(pc.EnrollmentCode),
		TeacherName:    optional(pc.TeacherName),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func toStudent(ps ProviderStudent, now time.Time) Student {
	return Student{
		ClassroomID: ps.UserID,
		Name:        core.CleanString(ps.FullName),
		Email:       core.CleanString(ps.Email, true /* lower */),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func toAssignment(pa ProviderAssignment, courseID string, loc *time.Location, now time.Time) Assignment {
	return Assignment{
		ClassroomID: pa.ID,
		CourseID:    courseID,
		Title:       core.CleanString(pa.Title),
		Description: optional(pa.Description),
		DueDate:     DueDateTime(pa.DueDate, pa.DueTime, loc),
		MaxPoints:   pa.MaxPoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func toSubmission(ps ProviderSubmission, assignmentID, studentID string, now time.Time) Submission {
	return Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       MapStatus(ps.State),
		Grade:        ps.Grade,
		SubmittedAt:  SubmittedAt(ps.History),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
