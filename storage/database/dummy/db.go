package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/core/notification"
)

type (
	// DB is an in-memory store with the same natural keys as the SQL schema.
	DB struct {
		classroom    *classroomTables
		cell         *cellTables
		notification *notificationTable
	}

	classroomTables struct {
		sync.RWMutex
		courses     map[string]*classroom.Course     // {classroom_id: course}
		students    map[string]*classroom.Student    // {classroom_id: student}
		assignments map[string]*classroom.Assignment // {classroom_id: assignment}
		submissions map[[2]string]*classroom.Submission
		seq         int64 // insertion order
		order       map[string]int64
		failOn      map[string]error // {op: err}, for tests
	}

	cellTables struct {
		sync.RWMutex
		cells          map[string]*cell.Cell      // {name: cell}
		professors     map[string]*cell.Professor // {email: professor}
		studentCells   map[[2]string]struct{}     // {student_id, cell_id}
		professorCells map[[2]string]struct{}     // {professor_id, cell_id}
		failOn         map[string]error
	}

	notificationTable struct {
		sync.RWMutex
		table  []notification.Record
		failOn error
	}
)

func Open() *DB {
	return &DB{
		classroom: &classroomTables{
			courses:     make(map[string]*classroom.Course),
			students:    make(map[string]*classroom.Student),
			assignments: make(map[string]*classroom.Assignment),
			submissions: make(map[[2]string]*classroom.Submission),
			order:       make(map[string]int64),
			failOn:      make(map[string]error),
		},
		cell: &cellTables{
			cells:          make(map[string]*cell.Cell),
			professors:     make(map[string]*cell.Professor),
			studentCells:   make(map[[2]string]struct{}),
			professorCells: make(map[[2]string]struct{}),
			failOn:         make(map[string]error),
		},
		notification: &notificationTable{},
	}
}

// FailOn makes every later call of the named repository operation (e.g. "UpsertStudent") fail with err.
func (db *DB) FailOn(op string, err error) {
	db.classroom.Lock()
	db.classroom.failOn[op] = err
	db.classroom.Unlock()

	db.cell.Lock()
	db.cell.failOn[op] = err
	db.cell.Unlock()

	if op == "SaveNotification" {
		db.notification.Lock()
		db.notification.failOn = err
		db.notification.Unlock()
	}
}

func newID() string {
	return uuid.NewString()
}
