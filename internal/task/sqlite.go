package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/clock"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/ctxutil"
	"github.com/mrz1836/faster/internal/domain"
	fastererrors "github.com/mrz1836/faster/internal/errors"
)

// timeLayout is fixed width and always UTC, so lexical and chronological
// order of stored timestamps coincide.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// maxIDAttempts bounds retries when a generated id collides.
const maxIDAttempts = 5

const dirPerm = 0o750

const taskColumns = `id, command, status, model, created_at, started_at, completed_at, error`

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	command      TEXT NOT NULL,
	status       TEXT NOT NULL,
	model        TEXT,
	created_at   TEXT NOT NULL,
	started_at   TEXT,
	completed_at TEXT,
	error        TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_status_created ON tasks(status, created_at);
`

// Config locates and tunes the task database.
type Config struct {
	// Path is the SQLite database file. Parent directories are created.
	Path string

	// BusyTimeout is how long a writer waits on a lock held by another process.
	BusyTimeout time.Duration
}

// SQLiteStore implements Store on a SQLite database shared by the CLI and the daemon.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	clock  clock.Clock
	newID  IDGenerator
	logger zerolog.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock sets the time source for task timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *SQLiteStore) {
		s.clock = c
	}
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *SQLiteStore) {
		s.newID = gen
	}
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *SQLiteStore) {
		s.logger = logger.With().Str("component", "task_store").Logger()
	}
}

// Open opens (creating if needed) the database at cfg.Path and applies the
// schema. It is safe to call on an existing database.
func Open(ctx context.Context, cfg Config, opts ...Option) (*SQLiteStore, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("failed to open task store: database path %w", fastererrors.ErrEmptyValue)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPerm); err != nil {
		return nil, fastererrors.Storage(err, "create database directory")
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = constants.DefaultBusyTimeout
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_txlock=immediate", cfg.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fastererrors.Storage(err, "open database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   cfg.Path,
		clock:  clock.RealClock{},
		newID:  NewID,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Debug().Str("path", cfg.Path).Msg("task store opened")
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=FULL;"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return s.storageErr(ctx, err, "set pragma")
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return s.storageErr(ctx, err, "apply schema")
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Enqueue inserts a queued task. A colliding id is regenerated.
func (s *SQLiteStore) Enqueue(ctx context.Context, command, model string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	createdAt := formatTime(s.clock.Now())
	for range maxIDAttempts {
		id := s.newID()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (id, command, status, model, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, command, string(constants.TaskStatusQueued), nullString(model), createdAt)
		if err == nil {
			s.logger.Debug().Str("task_id", id).Msg("task enqueued")
			return id, nil
		}
		if !isPrimaryKeyViolation(err) {
			return "", s.storageErr(ctx, err, "enqueue task")
		}
		s.logger.Debug().Str("task_id", id).Msg("task id collision, regenerating")
	}
	return "", fastererrors.Storage(fmt.Errorf("no unique id after %d attempts", maxIDAttempts), "enqueue task")
}

// Dequeue peeks at the oldest queued task.
func (s *SQLiteStore) Dequeue(ctx context.Context) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY created_at ASC, rowid ASC LIMIT 1`,
		string(constants.TaskStatusQueued))
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // empty queue is not an error
	}
	if err != nil {
		return nil, s.storageErr(ctx, err, "dequeue task")
	}
	return t, nil
}

// Claim marks the oldest queued task running in a single statement.
func (s *SQLiteStore) Claim(ctx context.Context) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET status = ?, started_at = COALESCE(started_at, ?)
		WHERE status = ? AND id = (
			SELECT id FROM tasks
			WHERE status = ?
			ORDER BY created_at ASC, rowid ASC
			LIMIT 1
		)
		RETURNING `+taskColumns,
		string(constants.TaskStatusRunning), formatTime(s.clock.Now()),
		string(constants.TaskStatusQueued), string(constants.TaskStatusQueued))
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // empty queue is not an error
	}
	if err != nil {
		return nil, s.storageErr(ctx, err, "claim task")
	}

	s.logger.Debug().Str("task_id", t.ID).Msg("task claimed")
	return t, nil
}

// UpdateStatus validates and applies a status change.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status constants.TaskStatus) error {
	return s.transition(ctx, id, status, "", nil)
}

// Fail marks a running task failed and records message.
func (s *SQLiteStore) Fail(ctx context.Context, id, message string) error {
	return s.transition(ctx, id, constants.TaskStatusFailed, message, nil)
}

// Cancel cancels a queued task.
func (s *SQLiteStore) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, id, constants.TaskStatusCancelled, "", func(from constants.TaskStatus) error {
		if from == constants.TaskStatusRunning {
			return fmt.Errorf("%w: cannot cancel task %s", fastererrors.ErrTaskRunning, id)
		}
		if IsTerminalStatus(from) {
			return fmt.Errorf("%w: task %s is already %s", fastererrors.ErrInvalidTransition, id, from)
		}
		return nil
	})
}

// transition reads the current status, validates the change and writes it
// inside one immediate transaction.
func (s *SQLiteStore) transition(ctx context.Context, id string, to constants.TaskStatus,
	message string, precheck func(from constants.TaskStatus) error,
) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.storageErr(ctx, err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", fastererrors.ErrTaskNotFound, id)
	}
	if err != nil {
		return s.storageErr(ctx, err, "read task status")
	}

	from := constants.TaskStatus(current)
	if precheck != nil {
		if err := precheck(from); err != nil {
			return err
		}
	}
	if err := ValidateTransition(from, to); err != nil {
		return fmt.Errorf("task %s: %w", id, err)
	}

	now := formatTime(s.clock.Now())
	var startedAt, completedAt sql.NullString
	if setsStartedAt(to) {
		startedAt = sql.NullString{String: now, Valid: true}
	}
	if setsCompletedAt(to) {
		completedAt = sql.NullString{String: now, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?,
		    started_at = COALESCE(started_at, ?),
		    completed_at = COALESCE(completed_at, ?),
		    error = ?
		WHERE id = ?`,
		string(to), startedAt, completedAt, nullString(message), id); err != nil {
		return s.storageErr(ctx, err, "update task status")
	}

	if err := tx.Commit(); err != nil {
		return s.storageErr(ctx, err, "commit status change")
	}

	s.logger.Debug().
		Str("task_id", id).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("task status changed")
	return nil
}

// Get returns a task by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", fastererrors.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, s.storageErr(ctx, err, "get task")
	}
	return t, nil
}

// List returns every task, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.Task, error) {
	return s.ListByStatus(ctx)
}

// ListByStatus returns tasks in any of statuses, newest first. No statuses
// means all tasks.
func (s *SQLiteStore) ListByStatus(ctx context.Context, statuses ...constants.TaskStatus) ([]*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + placeholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.storageErr(ctx, err, "list tasks")
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, s.storageErr(ctx, err, "scan task")
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(ctx, err, "list tasks")
	}
	return tasks, nil
}

// Counts returns per-status totals with every status present.
func (s *SQLiteStore) Counts(ctx context.Context) (map[constants.TaskStatus]int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, s.storageErr(ctx, err, "count tasks")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[constants.TaskStatus]int, len(constants.AllTaskStatuses()))
	for _, status := range constants.AllTaskStatuses() {
		counts[status] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, s.storageErr(ctx, err, "scan count")
		}
		counts[constants.TaskStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(ctx, err, "count tasks")
	}
	return counts, nil
}

// ClearCompleted deletes completed and cancelled tasks.
func (s *SQLiteStore) ClearCompleted(ctx context.Context) (int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	args := make([]any, 0, len(clearableStatuses))
	for _, status := range clearableStatuses {
		args = append(args, string(status))
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE status IN (`+placeholders(len(clearableStatuses))+`)`, args...)
	if err != nil {
		return 0, s.storageErr(ctx, err, "clear completed tasks")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.storageErr(ctx, err, "clear completed tasks")
	}

	s.logger.Debug().Int64("removed", n).Msg("completed tasks cleared")
	return int(n), nil
}

// storageErr keeps context cancellation distinct from storage failure so a
// shutting-down daemon is not reported as a broken database.
func (s *SQLiteStore) storageErr(ctx context.Context, err error, op string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fastererrors.Storage(err, op)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                                           domain.Task
		status, createdAt                           string
		model, startedAt, completedAt, errorMessage sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Command, &status, &model, &createdAt, &startedAt, &completedAt, &errorMessage); err != nil {
		return nil, err
	}

	parsed, ok := constants.ParseTaskStatus(status)
	if !ok {
		return nil, fmt.Errorf("task %s has unknown status %q", t.ID, status)
	}
	t.Status = parsed
	t.Model = model.String
	t.Error = errorMessage.String

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil //nolint:nilnil // absent timestamp
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var _ Store = (*SQLiteStore)(nil)
