package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ArchiveRepository persists generated schedules when the database is
// enabled. Each run lands as one archive row plus its slot rows.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (r *ArchiveRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS schedule_archives (
	id TEXT PRIMARY KEY,
	engine TEXT NOT NULL,
	course_count INTEGER NOT NULL,
	expected_hours INTEGER NOT NULL,
	scheduled_hours INTEGER NOT NULL,
	total_penalty INTEGER NOT NULL,
	quality_rating TEXT NOT NULL,
	failure_reasons JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS schedule_archive_slots (
	id TEXT PRIMARY KEY,
	archive_id TEXT NOT NULL REFERENCES schedule_archives(id) ON DELETE CASCADE,
	course TEXT NOT NULL,
	session_type TEXT NOT NULL,
	day_of_week INTEGER NOT NULL,
	time_slot INTEGER NOT NULL,
	faculty TEXT NOT NULL,
	room TEXT NOT NULL,
	duration_hours INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedule_archive_slots_archive ON schedule_archive_slots (archive_id)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

// SaveRun upserts the archive row and replaces its slots in one transaction.
// Re-running with the same result id overwrites the previous run.
func (r *ArchiveRepository) SaveRun(ctx context.Context, archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error {
	if archive == nil {
		return fmt.Errorf("archive payload is nil")
	}
	if archive.ID == "" {
		return fmt.Errorf("archive id is required")
	}
	if len(archive.FailureReasons) == 0 {
		archive.FailureReasons = types.JSONText(`{}`)
	}
	if archive.CreatedAt.IsZero() {
		archive.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsertQuery = `
INSERT INTO schedule_archives (id, engine, course_count, expected_hours, scheduled_hours, total_penalty, quality_rating, failure_reasons, created_at)
VALUES (:id, :engine, :course_count, :expected_hours, :scheduled_hours, :total_penalty, :quality_rating, :failure_reasons, :created_at)
ON CONFLICT (id) DO UPDATE SET
	engine = EXCLUDED.engine,
	course_count = EXCLUDED.course_count,
	expected_hours = EXCLUDED.expected_hours,
	scheduled_hours = EXCLUDED.scheduled_hours,
	total_penalty = EXCLUDED.total_penalty,
	quality_rating = EXCLUDED.quality_rating,
	failure_reasons = EXCLUDED.failure_reasons,
	created_at = EXCLUDED.created_at`
	if _, err := tx.NamedExecContext(ctx, upsertQuery, archive); err != nil {
		return fmt.Errorf("upsert schedule archive: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_archive_slots WHERE archive_id = $1`, archive.ID); err != nil {
		return fmt.Errorf("clear archive slots: %w", err)
	}

	if len(slots) > 0 {
		for i := range slots {
			if slots[i].ID == "" {
				slots[i].ID = uuid.NewString()
			}
			slots[i].ArchiveID = archive.ID
		}
		const insertSlots = `
INSERT INTO schedule_archive_slots (id, archive_id, course, session_type, day_of_week, time_slot, faculty, room, duration_hours)
VALUES (:id, :archive_id, :course, :session_type, :day_of_week, :time_slot, :faculty, :room, :duration_hours)`
		if _, err := tx.NamedExecContext(ctx, insertSlots, slots); err != nil {
			return fmt.Errorf("insert archive slots: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}
	return nil
}

// FindByID loads an archived run by its result id.
func (r *ArchiveRepository) FindByID(ctx context.Context, id string) (*models.ScheduleArchive, error) {
	const query = `SELECT id, engine, course_count, expected_hours, scheduled_hours, total_penalty, quality_rating, failure_reasons, created_at
FROM schedule_archives WHERE id = $1`
	var archive models.ScheduleArchive
	if err := r.db.GetContext(ctx, &archive, query, id); err != nil {
		return nil, err
	}
	return &archive, nil
}

// ListRecent returns the newest archived runs.
func (r *ArchiveRepository) ListRecent(ctx context.Context, limit int) ([]models.ScheduleArchive, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, engine, course_count, expected_hours, scheduled_hours, total_penalty, quality_rating, failure_reasons, created_at
FROM schedule_archives ORDER BY created_at DESC LIMIT $1`
	var archives []models.ScheduleArchive
	if err := r.db.SelectContext(ctx, &archives, query, limit); err != nil {
		return nil, fmt.Errorf("list schedule archives: %w", err)
	}
	return archives, nil
}

// SlotsByArchive returns the slot rows of one archived run in grid order.
func (r *ArchiveRepository) SlotsByArchive(ctx context.Context, archiveID string) ([]models.ScheduleArchiveSlot, error) {
	const query = `SELECT id, archive_id, course, session_type, day_of_week, time_slot, faculty, room, duration_hours
FROM schedule_archive_slots WHERE archive_id = $1 ORDER BY day_of_week, time_slot, course`
	var slots []models.ScheduleArchiveSlot
	if err := r.db.SelectContext(ctx, &slots, query, archiveID); err != nil {
		return nil, fmt.Errorf("list archive slots: %w", err)
	}
	return slots, nil
}
