package audit

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Logger writes entries to SQLite. Write failures are logged and dropped.
type Logger struct {
	db *sql.DB
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO audit (start, end, project, source, action, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, project(e.Dir), e.Source, e.Action,
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		slog.Warn("audit write failed", "source", e.Source, "action", e.Action, "error", err)
	}
}

// dbPathFunc returns the database location. Tests override it.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".greplace", "audit.db")
	}
	return filepath.Join(home, ".config", "greplace", "audit.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path of the audit database.
func DBPath() string {
	return dbPath()
}

// project identifies a working directory without storing it.
func project(dir string) string {
	if dir == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(dir), 16)
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			start    INTEGER NOT NULL,
			end      INTEGER NOT NULL,
			project  TEXT NOT NULL,
			source   TEXT NOT NULL,
			action   TEXT NOT NULL,
			success  INTEGER NOT NULL,
			error    TEXT,
			detail   TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_audit_start ON audit(start);
		CREATE INDEX IF NOT EXISTS idx_audit_project ON audit(project);
	`)
	return err
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
