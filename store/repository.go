package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/transcript"
)

const segmentBatchSize = 200

// Repository implements meeting.Repository on top of GORM.
type Repository struct {
	db *DB
}

var _ meeting.Repository = (*Repository)(nil)

// NewRepository creates a Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new meeting.
func (r *Repository) Create(ctx context.Context, m *meeting.Meeting) error {
	err := r.db.WithContext(ctx).Create(toMeetingRecord(m)).Error
	return fromDatabase(err, "meeting", m.ID)
}

// Get loads a meeting by ID.
func (r *Repository) Get(ctx context.Context, id string) (*meeting.Meeting, error) {
	var rec MeetingRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, fromDatabase(err, "meeting", id)
	}
	return rec.toMeeting(), nil
}

// Update overwrites every column of an existing meeting.
func (r *Repository) Update(ctx context.Context, m *meeting.Meeting) error {
	tx := r.db.WithContext(ctx).
		Model(&MeetingRecord{}).
		Where("id = ?", m.ID).
		Select("*").
		Updates(toMeetingRecord(m))
	if tx.Error != nil {
		return fromDatabase(tx.Error, "meeting", m.ID)
	}
	if tx.RowsAffected == 0 {
		return errors.NotFound("meeting", m.ID)
	}
	return nil
}

// List returns meetings, newest first.
func (r *Repository) List(ctx context.Context, status meeting.Status, limit int) ([]*meeting.Meeting, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []MeetingRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fromDatabase(err, "meeting", "")
	}
	out := make([]*meeting.Meeting, len(recs))
	for i := range recs {
		out[i] = recs[i].toMeeting()
	}
	return out, nil
}

// SaveTranscript replaces the stored transcript of a meeting in one
// transaction.
func (r *Repository) SaveTranscript(ctx context.Context, meetingID string, res *transcript.Result) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&SegmentRecord{}).Error; err != nil {
			return err
		}
		if segs := toSegmentRecords(meetingID, res.Segments); len(segs) > 0 {
			if err := tx.CreateInBatches(segs, segmentBatchSize).Error; err != nil {
				return err
			}
		}
		rec := TranscriptRecord{
			MeetingID: meetingID,
			Speakers:  res.Speakers,
			Overlaps:  res.Overlaps,
			Stats:     res.Stats,
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	return fromDatabase(err, "transcript", meetingID)
}

// Transcript loads the stored transcript of a meeting.
func (r *Repository) Transcript(ctx context.Context, meetingID string) (*transcript.Result, error) {
	db := r.db.WithContext(ctx)

	var rec TranscriptRecord
	if err := db.First(&rec, "meeting_id = ?", meetingID).Error; err != nil {
		return nil, fromDatabase(err, "transcript", meetingID)
	}
	var segs []SegmentRecord
	if err := db.Where("meeting_id = ?", meetingID).Order("segment_number").Find(&segs).Error; err != nil {
		return nil, fromDatabase(err, "transcript", meetingID)
	}

	res := &transcript.Result{
		Segments: make([]transcript.AlignedSegment, len(segs)),
		Overlaps: rec.Overlaps,
		Speakers: rec.Speakers,
		Stats:    rec.Stats,
	}
	for i := range segs {
		res.Segments[i] = segs[i].toSegment()
	}
	return res, nil
}
