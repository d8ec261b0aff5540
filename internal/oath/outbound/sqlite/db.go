package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"

// DB holds a single-connection writer and a small reader pool over the same
// database file.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// Open opens path in WAL mode. ":memory:" opens a private shared-cache
// in-memory database named by path.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&%s", path, pragmas)
	return open(ctx, dsn)
}

// OpenMemory opens a named in-memory database shared by the writer and
// the readers.
func OpenMemory(ctx context.Context, name string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", name, pragmas)
	return open(ctx, dsn)
}

func open(ctx context.Context, dsn string) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping writer: %w", err), writer.Close())
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open reader: %w", err), writer.Close())
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping reader: %w", err), reader.Close(), writer.Close())
	}

	return &DB{Writer: writer, Reader: reader}, nil
}

// Close closes both pools.
func (db *DB) Close() error {
	return errors.Join(db.Reader.Close(), db.Writer.Close())
}

// Store persists virtual tokens, their credentials and remembered devices.
// Secrets and keys are sealed before they reach the database.
type Store struct {
	db     *DB
	sealer sealer.Sealer
	ins    instrument.Instrumentation
}

func NewStore(db *DB, s sealer.Sealer, ins instrument.Instrumentation) *Store {
	return &Store{db: db, sealer: s, ins: ins}
}

func (s *Store) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return goerror.ErrConflict
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return goerror.ErrNotFound
		}
	}

	return err
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("oath.outbound.sqlite").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) seal(plain []byte, deviceID string, p sealer.Purpose) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	return s.sealer.Seal(plain, sealer.Scope{DeviceID: deviceID, Purpose: p})
}

func (s *Store) open(sealed []byte, deviceID string, p sealer.Purpose) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	return s.sealer.Open(sealed, sealer.Scope{DeviceID: deviceID, Purpose: p})
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
