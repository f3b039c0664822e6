// Package audit keeps a best-effort trail of searches and replaces in a
// SQLite database, so that backups and past changes can be traced later.
//
// Entries are built fluently and written once the operation is done:
//
//	audit.Event("search", "run").
//		Detail("query", opts.Query).
//		Detail("matches", n).
//		Write(err)
//
// Nothing is recorded until Open succeeds.
package audit

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry is one audited operation.
type Entry struct {
	Source string // "search", "replace"
	Action string // "run", "cancel", "preview", ...
	Dir    string // working directory of the operation

	Start int64 // unix seconds at Event
	End   int64 // unix seconds at Write

	Success bool
	Error   string
	Detail  map[string]any
}

// Builder constructs an Entry. Create with Event and finish with Write.
type Builder struct {
	entry Entry
}

// Event starts an entry for action performed by source.
func Event(source, action string) *Builder {
	return &Builder{entry: Entry{
		Source: source,
		Action: action,
		Start:  time.Now().Unix(),
	}}
}

// Dir sets the directory the operation ran in.
func (b *Builder) Dir(dir string) *Builder {
	b.entry.Dir = dir
	return b
}

// Detail adds one key/value pair. May be called repeatedly.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write records the entry; err decides success.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Calling it again is a no-op.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// Log writes e. Does nothing when the logger is not open.
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
