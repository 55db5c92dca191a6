package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestArchiveServicePersistsQueuedRuns(t *testing.T) {
	store := &archiveStoreStub{done: make(chan string, 1)}
	service := NewArchiveService(store, nil, zap.NewNop(), ArchiveConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	defer service.Stop()

	archive := &models.ScheduleArchive{ID: "run-1", Engine: "greedy", CourseCount: 2}
	slots := []models.ScheduleArchiveSlot{
		{ID: "s1", ArchiveID: "run-1", Course: "Mathematics", DayOfWeek: 0, TimeSlot: 0, DurationHours: 1},
	}
	require.NoError(t, service.Enqueue(archive, slots))

	select {
	case id := <-store.done:
		assert.Equal(t, "run-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("archive job was not persisted in time")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.slots, 1)
	assert.Equal(t, "Mathematics", store.slots[0][0].Course)
}

func TestArchiveServiceEnqueueBeforeStart(t *testing.T) {
	service := NewArchiveService(&archiveStoreStub{done: make(chan string, 1)}, nil, zap.NewNop(), ArchiveConfig{})

	err := service.Enqueue(&models.ScheduleArchive{ID: "run-2"}, nil)
	assert.Error(t, err)
}

func TestArchiveServiceRecent(t *testing.T) {
	store := &archiveStoreStub{
		archives: []models.ScheduleArchive{
			{ID: "run-9", Engine: "greedy"},
			{ID: "run-8", Engine: "exact"},
		},
	}
	service := NewArchiveService(store, nil, zap.NewNop(), ArchiveConfig{})

	archives, err := service.Recent(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, archives, 2)
	assert.Equal(t, "run-9", archives[0].ID)
	assert.Equal(t, maxArchiveListLimit, store.lastLimit)
}

func TestArchiveServiceRun(t *testing.T) {
	store := &archiveStoreStub{
		archives: []models.ScheduleArchive{{ID: "run-9", Engine: "greedy", CourseCount: 1}},
		runSlots: []models.ScheduleArchiveSlot{
			{ID: "s1", ArchiveID: "run-9", Course: "Mathematics", DayOfWeek: 2, TimeSlot: 4},
		},
	}
	service := NewArchiveService(store, nil, zap.NewNop(), ArchiveConfig{})

	run, err := service.Run(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, "run-9", run.Archive.ID)
	require.Len(t, run.Slots, 1)
	assert.Equal(t, "Mathematics", run.Slots[0].Course)

	_, err = service.Run(context.Background(), "run-0")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = service.Run(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestArchiveServiceNilReadsUnavailable(t *testing.T) {
	var service *ArchiveService

	_, err := service.Recent(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)

	_, err = service.Run(context.Background(), "run-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)

	assert.NoError(t, service.Enqueue(&models.ScheduleArchive{ID: "run-1"}, nil))
}

// --- Fixtures ---

type archiveStoreStub struct {
	mu        sync.Mutex
	saved     []*models.ScheduleArchive
	slots     [][]models.ScheduleArchiveSlot
	done      chan string
	archives  []models.ScheduleArchive
	runSlots  []models.ScheduleArchiveSlot
	lastLimit int
}

func (s *archiveStoreStub) SaveRun(_ context.Context, archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error {
	s.mu.Lock()
	s.saved = append(s.saved, archive)
	s.slots = append(s.slots, slots)
	s.mu.Unlock()
	s.done <- archive.ID
	return nil
}

func (s *archiveStoreStub) FindByID(_ context.Context, id string) (*models.ScheduleArchive, error) {
	for i := range s.archives {
		if s.archives[i].ID == id {
			return &s.archives[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *archiveStoreStub) ListRecent(_ context.Context, limit int) ([]models.ScheduleArchive, error) {
	s.lastLimit = limit
	return s.archives, nil
}

func (s *archiveStoreStub) SlotsByArchive(_ context.Context, archiveID string) ([]models.ScheduleArchiveSlot, error) {
	var out []models.ScheduleArchiveSlot
	for _, slot := range s.runSlots {
		if slot.ArchiveID == archiveID {
			out = append(out, slot)
		}
	}
	return out, nil
}
