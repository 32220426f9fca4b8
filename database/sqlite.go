package database

import (
	"database/sql"
	"os"
	"path/filepath"

	"emperror.dev/errors"
	_ "github.com/mattn/go-sqlite3"
)

type (
	Database interface {
		SendPayload(kind string, data []byte) (err error)
		Close() error
	}

	database struct {
		db *sql.DB
	}
)

// New creates a fresh export file at dbPath. A file left by a previous run is removed first,
// so the export only ever describes one run.
func New(dbPath string) (Database, error) {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, errors.Errorf("export directory %s does not exist", dir)
	}

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "os.Remove()")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "sql.Open()")
	}

	sqlStmt := `
	create table payloads (id integer not null primary key, date datetime, kind text not null, payload json);
	`
	if _, err = db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.Exec() on init statement")
	}
	return &database{db: db}, nil
}

// SendPayload stores one JSON document of the given kind
func (w *database) SendPayload(kind string, data []byte) (err error) {
	tx, err := w.db.Begin()
	if err != nil {
		return errors.Wrap(err, "db.Begin()")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare("insert into payloads(date, kind, payload) values(CURRENT_TIMESTAMP, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "tx.Prepare()")
	}
	defer func() {
		cerr := stmt.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err = stmt.Exec(kind, string(data)); err != nil {
		return errors.Wrap(err, "stmt.Exec()")
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "tx.Commit()")
	}

	return nil
}

func (w *database) Close() error {
	return w.db.Close()
}
