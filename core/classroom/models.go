package classroom

import "time"

// Status is the local status of a Submission.
type Status string

const (
	StatusNew                Status = "new"
	StatusTurnedIn           Status = "turned_in"
	StatusReturned           Status = "returned"
	StatusReclaimedByStudent Status = "reclaimed_by_student"
	StatusMissing            Status = "missing" // dashboards only; never written by the sync
)

type (
	Course struct {
		ID             string    `json:"id"`
		ClassroomID    string    `json:"classroom_id"`
		Name           string    `json:"name"`
		Description    *string   `json:"description"`
		EnrollmentCode *string   `json:"enrollment_code"`
		TeacherName    *string   `json:"teacher_name"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	Student struct {
		ID          string    `json:"id"`
		ClassroomID string    `json:"classroom_id"`
		Name        string    `json:"name"`
		Email       string    `json:"email"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Assignment struct {
		ID          string     `json:"id"`
		ClassroomID string     `json:"classroom_id"`
		CourseID    string     `json:"course_id"`
		Title       string     `json:"title"`
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		MaxPoints   *float64   `json:"max_points"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	Submission struct {
		ID           string     `json:"id"`
		AssignmentID string     `json:"assignment_id"`
		StudentID    string     `json:"student_id"`
		Status       Status     `json:"status"`
		Grade        *float64   `json:"grade"`
		SubmittedAt  *time.Time `json:"submitted_at"`
		CreatedAt    time.Time  `json:"created_at"`
		UpdatedAt    time.Time  `json:"updated_at"`
	}
)

// Provider-side records, as returned by a Fetcher.
type (
	ProviderCourse struct {
		ID             string `json:"id" validate:"required"`
		Name           string `json:"name"`
		Description    string `json:"description"`
		EnrollmentCode string `json:"enrollmentCode"`
		OwnerID        string `json:"ownerId"`
		TeacherName    string `json:"teacherName"`
	}

	ProviderStudent struct {
		UserID   string `json:"userId" validate:"required"`
		FullName string `json:"fullName"`
		Email    string `json:"emailAddress" validate:"omitempty,email"`
	}

	Date struct {
		Year  int `json:"year" validate:"min=1"`
		Month int `json:"month" validate:"min=1,max=12"`
		Day   int `json:"day" validate:"min=1,max=31"`
	}

	TimeOfDay struct {
		Hours   int `json:"hours" validate:"min=0,max=23"`
		Minutes int `json:"minutes" validate:"min=0,max=59"`
	}

	ProviderAssignment struct {
		ID          string     `json:"id" validate:"required"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		DueDate     *Date      `json:"dueDate" validate:"omitempty"`
		DueTime     *TimeOfDay `json:"dueTime" validate:"omitempty"`
		MaxPoints   *float64   `json:"maxPoints" validate:"omitempty,gte=0"`
	}

	StateChange struct {
		State     string     `json:"state"`
		Timestamp *time.Time `json:"stateTimestamp"`
	}

	ProviderSubmission struct {
		ID           string        `json:"id" validate:"required"`
		UserID       string        `json:"userId" validate:"required"`
		CourseWorkID string        `json:"courseWorkId"`
		State        string        `json:"state"`
		Grade        *float64      `json:"assignedGrade"`
		History      []StateChange `json:"submissionHistory"`
	}
)

type (
	// Stats counts the records processed by a sync run.
	Stats struct {
		Courses     int `json:"courses"`
		Students    int `json:"students"`
		Assignments int `json:"assignments"`
		Submissions int `json:"submissions"`
		Rejected    int `json:"rejected"`
	}

	// Result summarizes a sync run; on failure it holds the partial Stats.
	Result struct {
		Stats     Stats
		Duration  time.Duration
		Timestamp time.Time
	}
)

type (
	StudentFilter struct {
		Email     string
		IDs       []string
		OrderedBy string // "name" (default) or "created_at"
	}

	SubmissionFilter struct {
		AssignmentID string
		StudentIDs   []string
		Status       Status
	}
)
