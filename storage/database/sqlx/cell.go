package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
)

type (
	cellRow struct {
		ID          string    `db:"id"`
		Name        string    `db:"name"`
		Description string    `db:"description"`
		Color       string    `db:"color"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	professorRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Email     string    `db:"email"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

const (
	cellColumns      = "id, name, description, color, created_at, updated_at"
	professorColumns = "id, name, email, created_at, updated_at"
)

type cellRepository struct {
	exec core.DBExecutor
}

var _ cell.Repository = (*cellRepository)(nil) // interface compliance check

func NewCellRepository(exec core.DBExecutor) cell.Repository {
	return &cellRepository{exec: exec}
}

func (repo cellRepository) UpsertCell(ctx context.Context, c cell.Cell) (cell.Cell, error) {
	created, updated := timestamps(c.CreatedAt, c.UpdatedAt)
	row := cellRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO cells (`+cellColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			color = EXCLUDED.color,
			updated_at = EXCLUDED.updated_at
		RETURNING `+cellColumns,
		uuid.NewString(), c.Name, c.Description, c.Color, created, updated,
	).StructScan(&row)
	if err != nil {
		return cell.Cell{}, errors.Wrap(err, "upserting cell")
	}
	return row.cell(), nil
}

func (repo cellRepository) UpsertProfessor(ctx context.Context, p cell.Professor) (cell.Professor, error) {
	created, updated := timestamps(p.CreatedAt, p.UpdatedAt)
	row := professorRow{}
	err := repo.exec.QueryRowxContext(ctx, `
		INSERT INTO professors (`+professorColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
		RETURNING `+professorColumns,
		uuid.NewString(), p.Name, p.Email, created, updated,
	).StructScan(&row)
	if err != nil {
		return cell.Professor{}, errors.Wrap(err, "upserting professor")
	}
	return row.professor(), nil
}

func (repo cellRepository) AssignStudent(ctx context.Context, studentID, cellID string) error {
	q := "INSERT INTO student_cells (student_id, cell_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if _, err := repo.exec.ExecContext(ctx, q, studentID, cellID); err != nil {
		return errors.Wrap(err, "assigning student")
	}
	return nil
}

func (repo cellRepository) AssignProfessor(ctx context.Context, professorID, cellID string) error {
	q := "INSERT INTO professor_cells (professor_id, cell_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if _, err := repo.exec.ExecContext(ctx, q, professorID, cellID); err != nil {
		return errors.Wrap(err, "assigning professor")
	}
	return nil
}

func (repo cellRepository) QueryCells(ctx context.Context) ([]cell.Cell, error) {
	var rows []cellRow
	if err := repo.exec.SelectContext(ctx, &rows, "SELECT "+cellColumns+" FROM cells ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "querying cells")
	}
	return unrowCells(rows), nil
}

func (repo cellRepository) QueryCellStudentIDs(ctx context.Context, cellID string) ([]string, error) {
	ids := []string{}
	q := "SELECT student_id FROM student_cells WHERE cell_id = $1 ORDER BY created_at, student_id"
	if err := repo.exec.SelectContext(ctx, &ids, q, cellID); err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "querying cell students")
	}
	return ids, nil
}

func (repo cellRepository) QueryCellProfessors(ctx context.Context, cellID string) ([]cell.Professor, error) {
	var rows []professorRow
	q := `
		SELECT p.id, p.name, p.email, p.created_at, p.updated_at
		FROM professors p
		JOIN professor_cells pc ON pc.professor_id = p.id
		WHERE pc.cell_id = $1
		ORDER BY p.name`
	if err := repo.exec.SelectContext(ctx, &rows, q, cellID); err != nil {
		return nil, errors.Wrap(err, "querying cell professors")
	}
	professors := make([]cell.Professor, 0, len(rows))
	for _, r := range rows {
		professors = append(professors, r.professor())
	}
	return professors, nil
}

func (repo cellRepository) QueryProfessorCells(ctx context.Context, email string) ([]cell.Cell, error) {
	var rows []cellRow
	q := `
		SELECT c.id, c.name, c.description, c.color, c.created_at, c.updated_at
		FROM cells c
		JOIN professor_cells pc ON pc.cell_id = c.id
		JOIN professors p ON p.id = pc.professor_id
		WHERE lower(p.email) = lower($1)
		ORDER BY c.name`
	if err := repo.exec.SelectContext(ctx, &rows, q, email); err != nil {
		return nil, errors.Wrap(err, "querying professor cells")
	}
	return unrowCells(rows), nil
}

func unrowCells(rows []cellRow) []cell.Cell {
	cells := make([]cell.Cell, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, r.cell())
	}
	return cells
}

func (r cellRow) cell() cell.Cell {
	return cell.Cell{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r professorRow) professor() cell.Professor {
	return cell.Professor{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
