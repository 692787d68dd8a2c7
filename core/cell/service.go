package cell

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/classroom"
)

var NowFunc = time.Now // mockable

var (
	demoCells = []Cell{
		{Name: "Célula A - Frontend", Color: "#50c69a", Description: "Especialización en desarrollo frontend y tecnologías web modernas"},
		{Name: "Célula B - Backend", Color: "#fa8534", Description: "Especialización en desarrollo backend y APIs"},
		{Name: "Célula C - Data Analytics", Color: "#ed3f70", Description: "Especialización en análisis de datos y business intelligence"},
	}

	demoProfessors = []Professor{
		{Name: "Prof. María García", Email: "profesor1.semillero@gmail.com"},
		{Name: "Prof. Carlos López", Email: "profesor2.semillero@gmail.com"},
		{Name: "Prof. Ana Martínez", Email: "profesor3.semillero@gmail.com"},
	}
)

type Service struct {
	repo      Repository
	classroom classroom.Repository
	logger    core.Logger
}

func NewService(repo Repository, classroomRepo classroom.Repository, logger core.Logger) *Service {
	return &Service{repo: repo, classroom: classroomRepo, logger: logger}
}

// Populate seeds the demo cells and professors, assigning every known student
// to the first cell and professor i to cell i. Running it again changes nothing.
func (svc *Service) Populate(ctx context.Context) (PopulateResult, error) {
	now := NowFunc().UTC()

	cells := make([]Cell, 0, len(demoCells))
	for _, c := range demoCells {
		c.CreatedAt, c.UpdatedAt = now, now
		saved, err := svc.repo.UpsertCell(ctx, c)
		if err != nil {
			return PopulateResult{}, errors.Wrapf(err, "creating cell %q", c.Name)
		}
		cells = append(cells, saved)
	}

	students, err := svc.classroom.QueryStudents(ctx, classroom.StudentFilter{OrderedBy: "name"})
	if err != nil {
		return PopulateResult{}, errors.Wrap(err, "fetching students")
	}
	if len(students) == 0 {
		return PopulateResult{
			Message:   "No students found to assign to cells",
			Stats:     PopulateStats{Cells: len(cells)},
			Timestamp: now,
		}, nil
	}

	var assigned int
	target := cells[0]
	for _, s := range students {
		if err := svc.repo.AssignStudent(ctx, s.ID, target.ID); err != nil {
			return PopulateResult{}, errors.Wrap(err, "assigning students to cells")
		}
		assigned++
	}

	var professors []Professor
	for _, p := range demoProfessors {
		p.CreatedAt, p.UpdatedAt = now, now
		saved, err := svc.repo.UpsertProfessor(ctx, p)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("creating professor %s", p.Email), err)
			continue
		}
		professors = append(professors, saved)
	}
	for i := 0; i < len(professors) && i < len(cells); i++ {
		if err := svc.repo.AssignProfessor(ctx, professors[i].ID, cells[i].ID); err != nil {
			svc.logger.Warn(fmt.Sprintf("assigning professor %s", professors[i].Email), err)
		}
	}

	distribution, err := svc.Distribution(ctx)
	if err != nil {
		return PopulateResult{}, err
	}

	svc.logger.Info("Cell population completed successfully")
	return PopulateResult{
		Message: "Cells populated successfully",
		Stats: PopulateStats{
			Cells:       len(cells),
			Students:    len(students),
			Assignments: assigned,
			Professors:  len(professors),
		},
		Distribution: distribution,
		Timestamp:    now,
	}, nil
}

// Distribution reports the students and professors of every cell.
func (svc *Service) Distribution(ctx context.Context) ([]Distribution, error) {
	cells, err := svc.repo.QueryCells(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying cells")
	}

	dist := make([]Distribution, 0, len(cells))
	for _, c := range cells {
		studentIDs, err := svc.repo.QueryCellStudentIDs(ctx, c.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "querying students of cell %q", c.Name)
		}
		professors, err := svc.repo.QueryCellProfessors(ctx, c.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "querying professors of cell %q", c.Name)
		}
		names := make([]string, 0, len(professors))
		for _, p := range professors {
			names = append(names, p.Name)
		}
		dist = append(dist, Distribution{
			CellID:     c.ID,
			CellName:   c.Name,
			Color:      c.Color,
			Students:   len(studentIDs),
			Professors: names,
		})
	}
	return dist, nil
}
