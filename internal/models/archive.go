package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleArchive is one persisted generation run, keyed by its result id.
type ScheduleArchive struct {
	ID             string         `db:"id" json:"id"`
	Engine         string         `db:"engine" json:"engine"`
	CourseCount    int            `db:"course_count" json:"courseCount"`
	ExpectedHours  int            `db:"expected_hours" json:"expectedHours"`
	ScheduledHours int            `db:"scheduled_hours" json:"scheduledHours"`
	TotalPenalty   int            `db:"total_penalty" json:"totalPenalty"`
	QualityRating  string         `db:"quality_rating" json:"qualityRating"`
	FailureReasons types.JSONText `db:"failure_reasons" json:"failureReasons"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// ScheduleArchiveSlot is one scheduled hour inside an archived run.
type ScheduleArchiveSlot struct {
	ID            string `db:"id" json:"id"`
	ArchiveID     string `db:"archive_id" json:"archiveId"`
	Course        string `db:"course" json:"course"`
	SessionType   string `db:"session_type" json:"sessionType"`
	DayOfWeek     int    `db:"day_of_week" json:"dayOfWeek"`
	TimeSlot      int    `db:"time_slot" json:"timeSlot"`
	Faculty       string `db:"faculty" json:"faculty"`
	Room          string `db:"room" json:"room"`
	DurationHours int    `db:"duration_hours" json:"durationHours"`
}
