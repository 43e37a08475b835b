// Package dbtest runs repositories against a DryRun postgres session and
// records the SQL they would have sent.
package dbtest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errNoConnection = errors.New("dbtest: dry run session has no connection")

// Recorder holds every statement built through the session, in order.
type Recorder struct {
	mu    sync.Mutex
	sqls  []string
	stubs []stub
}

type stub struct {
	match string
	rows  int64
	fill  func(dest any)
}

// Stub makes the first statement containing match report rows affected and,
// when fill is set, hands it the statement destination to populate. Earlier
// stubs win over later ones.
func (r *Recorder) Stub(match string, rows int64, fill func(dest any)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stubs = append(r.stubs, stub{match: match, rows: rows, fill: fill})
}

// Statements returns the recorded SQL with variables inlined.
func (r *Recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sqls...)
}

// Index returns the position of the first statement containing substr, or -1.
func (r *Recorder) Index(substr string) int {
	for i, s := range r.Statements() {
		if strings.Contains(s, substr) {
			return i
		}
	}
	return -1
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sqls = nil
}

func (r *Recorder) record(db *gorm.DB) {
	if db.Statement.SQL.Len() == 0 {
		return
	}
	sql := db.Dialector.Explain(db.Statement.SQL.String(), db.Statement.Vars...)

	r.mu.Lock()
	r.sqls = append(r.sqls, sql)
	var matched *stub
	for i := range r.stubs {
		if strings.Contains(sql, r.stubs[i].match) {
			matched = &r.stubs[i]
			break
		}
	}
	r.mu.Unlock()

	if matched == nil {
		return
	}
	if matched.fill != nil {
		matched.fill(db.Statement.Dest)
	}
	db.RowsAffected = matched.rows
}

// New opens a DryRun session whose transactions begin and commit without a
// server.
func New(t testing.TB) (*gorm.DB, *Recorder) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: pool{}}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	rec := &Recorder{}
	cb := db.Callback()
	require.NoError(t, cb.Create().After("gorm:create").Register("dbtest:record", rec.record))
	require.NoError(t, cb.Query().After("gorm:query").Register("dbtest:record", rec.record))
	require.NoError(t, cb.Update().After("gorm:update").Register("dbtest:record", rec.record))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("dbtest:record", rec.record))
	require.NoError(t, cb.Row().After("gorm:row").Register("dbtest:record", rec.record))
	require.NoError(t, cb.Raw().After("gorm:raw").Register("dbtest:record", rec.record))

	return db, rec
}

type pool struct{}

func (pool) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNoConnection
}

func (pool) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoConnection
}

func (pool) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoConnection
}

func (pool) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (pool) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	return &tx{}, nil
}

type tx struct{}

func (*tx) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNoConnection
}

func (*tx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoConnection
}

func (*tx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoConnection
}

func (*tx) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (*tx) Commit() error   { return nil }
func (*tx) Rollback() error { return nil }
