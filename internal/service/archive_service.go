package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

type archiveStore interface {
	SaveRun(ctx context.Context, archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error
	FindByID(ctx context.Context, id string) (*models.ScheduleArchive, error)
	ListRecent(ctx context.Context, limit int) ([]models.ScheduleArchive, error)
	SlotsByArchive(ctx context.Context, archiveID string) ([]models.ScheduleArchiveSlot, error)
}

// ArchivedRun is one persisted run with its slot rows, as served by the
// archive read endpoints.
type ArchivedRun struct {
	Archive *models.ScheduleArchive      `json:"archive"`
	Slots   []models.ScheduleArchiveSlot `json:"slots"`
}

const maxArchiveListLimit = 100

// archiveRun is one queued persistence job.
type archiveRun struct {
	Archive *models.ScheduleArchive
	Slots   []models.ScheduleArchiveSlot
}

// ArchiveService writes finished runs to the database off the request
// path. Failed writes retry through the queue; the API response never
// waits on them.
type ArchiveService struct {
	store   archiveStore
	queue   *jobs.Queue[archiveRun]
	metrics *MetricsService
	logger  *zap.Logger
}

// ArchiveConfig sizes the background writer.
type ArchiveConfig struct {
	Workers    int
	BufferSize int
}

// NewArchiveService wires the archive store behind a worker queue.
func NewArchiveService(store archiveStore, metrics *MetricsService, logger *zap.Logger, cfg ArchiveConfig) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ArchiveService{store: store, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue[archiveRun]("schedule-archive", s.persist, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers. A nil service is a no-op, so callers
// can skip the database wiring entirely.
func (s *ArchiveService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *ArchiveService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Enqueue schedules one run for persistence. A nil service drops the run.
func (s *ArchiveService) Enqueue(archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error {
	if s == nil {
		return nil
	}
	return s.queue.Enqueue(jobs.Job[archiveRun]{
		ID:      archive.ID,
		Payload: archiveRun{Archive: archive, Slots: slots},
	})
}

// Recent lists the newest archived runs. A nil service reports the
// archive as unavailable, which is the case when no database is wired.
func (s *ArchiveService) Recent(ctx context.Context, limit int) ([]models.ScheduleArchive, error) {
	if s == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "schedule archive is not configured")
	}
	if limit > maxArchiveListLimit {
		limit = maxArchiveListLimit
	}

	started := time.Now()
	archives, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "archive listing failed")
	}
	s.metrics.ObserveDBQuery("archive_list", time.Since(started))
	return archives, nil
}

// Run loads one archived run with its slots.
func (s *ArchiveService) Run(ctx context.Context, id string) (*ArchivedRun, error) {
	if s == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "schedule archive is not configured")
	}
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "archive id is required")
	}

	started := time.Now()
	archive, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("archived run %q not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "archive lookup failed")
	}
	slots, err := s.store.SlotsByArchive(ctx, archive.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "archive slots lookup failed")
	}
	s.metrics.ObserveDBQuery("archive_get", time.Since(started))
	return &ArchivedRun{Archive: archive, Slots: slots}, nil
}

func (s *ArchiveService) persist(ctx context.Context, job jobs.Job[archiveRun]) error {
	started := time.Now()
	if err := s.store.SaveRun(ctx, job.Payload.Archive, job.Payload.Slots); err != nil {
		return err
	}
	s.metrics.ObserveDBQuery("archive_save", time.Since(started))
	s.logger.Info("run archived",
		zap.String("archive_id", job.Payload.Archive.ID),
		zap.Int("slots", len(job.Payload.Slots)),
	)
	return nil
}
