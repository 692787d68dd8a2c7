package cell

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cell not found")

type (
	// Cell is a named learning group of students.
	Cell struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Color       string    `json:"color"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Professor struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// Distribution is the membership of one cell.
	Distribution struct {
		CellID     string   `json:"cell_id"`
		CellName   string   `json:"cell_name"`
		Color      string   `json:"color"`
		Students   int      `json:"student_count"`
		Professors []string `json:"professors"`
	}

	PopulateStats struct {
		Cells       int `json:"cells"`
		Students    int `json:"students"`
		Assignments int `json:"assignments"`
		Professors  int `json:"professors"`
	}

	PopulateResult struct {
		Message      string         `json:"message"`
		Stats        PopulateStats  `json:"stats"`
		Distribution []Distribution `json:"distribution,omitempty"`
		Timestamp    time.Time      `json:"timestamp"`
	}
)

// Repository persists cells, professors and their memberships.
// Cells are keyed on name, professors on email; memberships on their id pairs.
type Repository interface {
	UpsertCell(ctx context.Context, c Cell) (Cell, error)
	UpsertProfessor(ctx context.Context, p Professor) (Professor, error)
	AssignStudent(ctx context.Context, studentID, cellID string) error
	AssignProfessor(ctx context.Context, professorID, cellID string) error

	// QueryCells returns every cell ordered by name.
	QueryCells(ctx context.Context) ([]Cell, error)
	QueryCellStudentIDs(ctx context.Context, cellID string) ([]string, error)
	QueryCellProfessors(ctx context.Context, cellID string) ([]Professor, error)
	// QueryProfessorCells returns the cells of the professor with the given email, ordered by name.
	QueryProfessorCells(ctx context.Context, email string) ([]Cell, error)
}
