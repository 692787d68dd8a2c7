package testutil

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/semillerodigital/insights/storage/database"
)

// PrepareDB opens the database named by TEST_DATABASE_URL and migrates it to the latest version.
// The test is skipped when the variable is unset.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Open("postgres", dsn)
	Must(t, err)
	Must(t, db.Ping())

	Must(t, database.Migrate(db, "up"))

	ResetDB(t, db)
	t.Cleanup(func() {
		ResetDB(t, db)
		_ = db.Close()
	})
	return db
}

// ResetDB empties every application table.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE notifications, professor_cells, student_cells, professors, cells,
		submissions, assignments, students, courses CASCADE`)
	Must(t, err)
}
