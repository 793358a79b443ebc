package store

import (
	"time"

	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/transcript"
)

// MeetingRecord is the stored form of a meeting.
type MeetingRecord struct {
	ID              string     `gorm:"type:varchar(36);primaryKey"`
	Title           string     `gorm:"size:255;not null"`
	Language        string     `gorm:"size:8"`
	Status          string     `gorm:"size:16;not null;index"`
	AudioPath       string     `gorm:"size:1024"`
	Duration        float64    `gorm:"not null;default:0"`
	Profile         string     `gorm:"size:32"`
	MinSpeakers     int        `gorm:"not null;default:0"`
	MaxSpeakers     int        `gorm:"not null;default:0"`
	SkipDiarization bool       `gorm:"not null;default:false"`
	Error           string     `gorm:"type:text"`
	StartedAt       time.Time  `gorm:"not null"`
	EndedAt         *time.Time `gorm:"default:null"`
	CreatedAt       time.Time  `gorm:"index"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime:false"`
}

// TableName overrides the GORM table name.
func (MeetingRecord) TableName() string { return "meetings" }

// SegmentRecord is one line of a stored transcript.
type SegmentRecord struct {
	ID               uint    `gorm:"primaryKey"`
	MeetingID        string  `gorm:"type:varchar(36);not null;index:idx_segment_order,priority:1"`
	SegmentNumber    int     `gorm:"not null;index:idx_segment_order,priority:2"`
	Start            float64 `gorm:"not null"`
	End              float64 `gorm:"not null"`
	SpeakerID        string  `gorm:"size:64"`
	SpeakerLabel     string  `gorm:"size:64"`
	Text             string  `gorm:"type:text;not null"`
	IsOverlap        bool
	SpeakerTotalTime float64
}

// TableName overrides the GORM table name.
func (SegmentRecord) TableName() string { return "transcript_segments" }

// TranscriptRecord keeps the diarization context of the latest run.
type TranscriptRecord struct {
	MeetingID string                     `gorm:"type:varchar(36);primaryKey"`
	Speakers  []transcript.SpeakerStat   `gorm:"serializer:json"`
	Overlaps  []transcript.OverlapRegion `gorm:"serializer:json"`
	Stats     transcript.Stats           `gorm:"serializer:json"`
	CreatedAt time.Time
}

// TableName overrides the GORM table name.
func (TranscriptRecord) TableName() string { return "transcripts" }

func toMeetingRecord(m *meeting.Meeting) *MeetingRecord {
	return &MeetingRecord{
		ID:              m.ID,
		Title:           m.Title,
		Language:        m.Language,
		Status:          string(m.Status),
		AudioPath:       m.AudioPath,
		Duration:        m.Duration,
		Profile:         m.Profile,
		MinSpeakers:     m.MinSpeakers,
		MaxSpeakers:     m.MaxSpeakers,
		SkipDiarization: m.SkipDiarization,
		Error:           m.Error,
		StartedAt:       m.StartedAt,
		EndedAt:         m.EndedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *MeetingRecord) toMeeting() *meeting.Meeting {
	return &meeting.Meeting{
		ID:              r.ID,
		Title:           r.Title,
		Language:        r.Language,
		Status:          meeting.Status(r.Status),
		AudioPath:       r.AudioPath,
		Duration:        r.Duration,
		Profile:         r.Profile,
		MinSpeakers:     r.MinSpeakers,
		MaxSpeakers:     r.MaxSpeakers,
		SkipDiarization: r.SkipDiarization,
		Error:           r.Error,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toSegmentRecords(meetingID string, segments []transcript.AlignedSegment) []SegmentRecord {
	out := make([]SegmentRecord, len(segments))
	for i, s := range segments {
		out[i] = SegmentRecord{
			MeetingID:        meetingID,
			SegmentNumber:    i,
			Start:            s.Start,
			End:              s.End,
			SpeakerID:        s.Speaker,
			SpeakerLabel:     s.Label,
			Text:             s.Text,
			IsOverlap:        s.IsOverlap,
			SpeakerTotalTime: s.SpeakerTotalTime,
		}
	}
	return out
}

func (r *SegmentRecord) toSegment() transcript.AlignedSegment {
	return transcript.AlignedSegment{
		Start:            r.Start,
		End:              r.End,
		Speaker:          r.SpeakerID,
		Label:            r.SpeakerLabel,
		Text:             r.Text,
		IsOverlap:        r.IsOverlap,
		SpeakerTotalTime: r.SpeakerTotalTime,
	}
}
