package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: ROSTER ARCHIVE
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS rollcall_students (
    session_id UUID NOT NULL,
    student_id UUID NOT NULL,
    name TEXT NOT NULL,
    group_name TEXT NOT NULL,
    call_count INTEGER NOT NULL DEFAULT 0 CHECK (call_count >= 0),
    added_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (session_id, student_id),
    CONSTRAINT rollcall_students_name_unique UNIQUE (session_id, name)
);

CREATE INDEX IF NOT EXISTS idx_rollcall_students_group
    ON rollcall_students(session_id, group_name);
`

const migration001Down = `
DROP TABLE IF EXISTS rollcall_students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CALL HISTORY ARCHIVE
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS rollcall_calls (
    id BIGSERIAL PRIMARY KEY,
    session_id UUID NOT NULL,
    student_id UUID NOT NULL,
    name TEXT NOT NULL,
    group_name TEXT NOT NULL,
    scope TEXT NOT NULL DEFAULT '',
    called_at TIMESTAMP WITH TIME ZONE NOT NULL,
    -- Cleared calls are kept for audit; the live session no longer sees them.
    cleared_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_rollcall_calls_session
    ON rollcall_calls(session_id, called_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS rollcall_calls;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// GetMigrations returns all embedded migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_rollcall_students", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_rollcall_calls", UpSQL: migration002Up, DownSQL: migration002Down},
	}
}

// Migrator applies the embedded schema.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "rollcall_schema_migrations",
	}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, fmt.Sprintf("SELECT version, applied_at FROM %s", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
// It returns the number of migrations applied.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	pending := pendingMigrations(m.migrations, applied)
	for _, mig := range pending {
		if mig.UpSQL == "" {
			return 0, fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return len(pending), nil
}

// pendingMigrations returns the migrations missing from applied, lowest
// version first.
func pendingMigrations(all []Migration, applied map[int]time.Time) []Migration {
	var pending []Migration
	for _, mig := range all {
		if _, ok := applied[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})
	return pending
}
