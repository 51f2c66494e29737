package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ArchiveRepository mirrors one session's roster and calls into PostgreSQL.
type ArchiveRepository struct {
	conn      *Connection
	sessionID string
}

// NewArchiveRepository creates a repository writing under sessionID, or
// under a fresh one when sessionID is not a UUID.
func NewArchiveRepository(conn *Connection, sessionID string) *ArchiveRepository {
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
	}
	return &ArchiveRepository{conn: conn, sessionID: sessionID}
}

// SessionID returns the ID every row of this run is stored under.
func (r *ArchiveRepository) SessionID() string {
	return r.sessionID
}

// SaveStudents upserts the given students in one transaction. Existing rows
// get the new call count.
func (r *ArchiveRepository) SaveStudents(ctx context.Context, students []student.Student) error {
	if len(students) == 0 {
		return nil
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range students {
			batch.Queue(`
				INSERT INTO rollcall_students
				(session_id, student_id, name, group_name, call_count, added_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (session_id, student_id) DO UPDATE SET
					call_count = EXCLUDED.call_count,
					updated_at = NOW()
			`,
				r.sessionID,
				s.ID,
				s.Name,
				s.Group,
				s.CallCount,
				s.AddedAt,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for _, s := range students {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to save student %q: %w", s.Name, err)
			}
		}
		return nil
	})
}

// RecordCall appends a call and bumps the student's archived count.
func (r *ArchiveRepository) RecordCall(ctx context.Context, rec callhistory.CallRecord, scope string, callCount int) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO rollcall_calls (session_id, student_id, name, group_name, scope, called_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			r.sessionID,
			rec.StudentID,
			rec.Name,
			rec.Group,
			scope,
			rec.CalledAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert call: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE rollcall_students
			SET call_count = $1, updated_at = NOW()
			WHERE session_id = $2 AND student_id = $3
		`, callCount, r.sessionID, rec.StudentID)
		if err != nil {
			return fmt.Errorf("failed to update call count: %w", err)
		}
		return nil
	})
}

// ClearCalls marks every live call of the session as cleared and returns how
// many rows were marked.
func (r *ArchiveRepository) ClearCalls(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE rollcall_calls SET cleared_at = $1
		WHERE session_id = $2 AND cleared_at IS NULL
	`, at, r.sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear calls: %w", err)
	}
	return tag.RowsAffected(), nil
}
