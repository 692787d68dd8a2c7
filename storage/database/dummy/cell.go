package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/semillerodigital/insights/core/cell"
)

type cellRepository struct {
	db *cellTables
}

var _ cell.Repository = (*cellRepository)(nil) // interface compliance check

func NewCellRepository(db *DB) cell.Repository {
	return &cellRepository{db: db.cell}
}

func (repo *cellRepository) UpsertCell(_ context.Context, c cell.Cell) (cell.Cell, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.failOn["UpsertCell"]; err != nil {
		return cell.Cell{}, err
	}

	if orig, ok := repo.db.cells[c.Name]; ok {
		c.ID, c.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		c.ID = newID()
	}
	repo.db.cells[c.Name] = &c
	return c, nil
}

func (repo *cellRepository) UpsertProfessor(_ context.Context, p cell.Professor) (cell.Professor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.failOn["UpsertProfessor"]; err != nil {
		return cell.Professor{}, err
	}

	key := strings.ToLower(p.Email)
	if orig, ok := repo.db.professors[key]; ok {
		p.ID, p.CreatedAt = orig.ID, orig.CreatedAt
	} else {
		p.ID = newID()
	}
	repo.db.professors[key] = &p
	return p, nil
}

func (repo *cellRepository) AssignStudent(_ context.Context, studentID, cellID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.failOn["AssignStudent"]; err != nil {
		return err
	}
	repo.db.studentCells[[2]string{studentID, cellID}] = struct{}{}
	return nil
}

func (repo *cellRepository) AssignProfessor(_ context.Context, professorID, cellID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.failOn["AssignProfessor"]; err != nil {
		return err
	}
	repo.db.professorCells[[2]string{professorID, cellID}] = struct{}{}
	return nil
}

func (repo *cellRepository) queryCells(keep func(c cell.Cell) bool) []cell.Cell {
	cells := make([]cell.Cell, 0, len(repo.db.cells))
	for _, c := range repo.db.cells {
		if keep == nil || keep(*c) {
			cells = append(cells, *c)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Name < cells[j].Name })
	return cells
}

func (repo *cellRepository) QueryCells(_ context.Context) ([]cell.Cell, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryCells(nil), nil
}

func (repo *cellRepository) QueryCellStudentIDs(_ context.Context, cellID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []string
	for key := range repo.db.studentCells {
		if key[1] == cellID {
			ids = append(ids, key[0])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *cellRepository) QueryCellProfessors(_ context.Context, cellID string) ([]cell.Professor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var professors []cell.Professor
	for _, p := range repo.db.professors {
		if _, ok := repo.db.professorCells[[2]string{p.ID, cellID}]; ok {
			professors = append(professors, *p)
		}
	}
	sort.Slice(professors, func(i, j int) bool { return professors[i].Name < professors[j].Name })
	return professors, nil
}

func (repo *cellRepository) QueryProfessorCells(_ context.Context, email string) ([]cell.Cell, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prof, ok := repo.db.professors[strings.ToLower(email)]
	if !ok {
		return []cell.Cell{}, nil
	}
	return repo.queryCells(func(c cell.Cell) bool {
		_, ok := repo.db.professorCells[[2]string{prof.ID, c.ID}]
		return ok
	}), nil
}
