package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/store/db"
	"github.com/K3das/clementine/transcript"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	StatusStarted = "started"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

var ErrTranscriptionNotFound = errors.New("transcription not found")
var ErrTranscriptionNotDone = errors.New("transcription has not finished")

type NewTranscription struct {
	UserID    string
	GuildID   string
	ChannelID string
	FileName  string
	Format    transcript.Format
	Task      asr.Task
	Language  string
}

// StoredTranscription is a finished transcription with its decoded segments.
type StoredTranscription struct {
	ID       uuid.UUID
	UserID   string
	FileName string
	Format   transcript.Format
	Task     asr.Task
	Language string
	Segments []transcript.Segment
}

func (s *Store) StartTranscription(ctx context.Context, t NewTranscription) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating id: %w", err)
	}

	err = s.CreateStartedTranscription(ctx, db.CreateStartedTranscriptionParams{
		ID:        pgUUID(id),
		UserID:    t.UserID,
		GuildID:   t.GuildID,
		ChannelID: t.ChannelID,
		FileName:  t.FileName,
		Format:    string(t.Format),
		Task:      string(t.Task),
		Language:  pgText(t.Language),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting transcription: %w", err)
	}

	return id, nil
}

func (s *Store) CompleteTranscription(ctx context.Context, id uuid.UUID, output *asr.ASROutput, audioDuration, processingTime float64) error {
	segments, err := encodeSegments(output.Segments)
	if err != nil {
		return err
	}

	_, err = s.UpdateTranscriptionDone(ctx, db.UpdateTranscriptionDoneParams{
		ID:       pgUUID(id),
		Model:    pgText(output.ModelName),
		Language: pgText(output.Language),
		AudioDuration: pgtype.Float8{
			Float64: audioDuration,
			Valid:   true,
		},
		ProcessingTime: pgtype.Float8{
			Float64: processingTime,
			Valid:   true,
		},
		Segments: segments,
	})
	if err != nil {
		return fmt.Errorf("updating transcription: %w", err)
	}

	return nil
}

func (s *Store) FailTranscription(ctx context.Context, id uuid.UUID) error {
	_, err := s.UpdateTranscriptionFailed(ctx, pgUUID(id))
	if err != nil {
		return fmt.Errorf("updating transcription: %w", err)
	}
	return nil
}

func (s *Store) LoadTranscription(ctx context.Context, id uuid.UUID) (*StoredTranscription, error) {
	row, err := s.GetTranscription(ctx, pgUUID(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTranscriptionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("getting transcription: %w", err)
	}

	return storedFromRow(row)
}

func storedFromRow(row db.Transcription) (*StoredTranscription, error) {
	if row.Status != StatusDone {
		return nil, ErrTranscriptionNotDone
	}

	segments, err := decodeSegments(row.Segments)
	if err != nil {
		return nil, err
	}

	format, err := transcript.ParseFormat(row.Format)
	if err != nil {
		format = transcript.PlainText
	}

	return &StoredTranscription{
		ID:       uuid.UUID(row.ID.Bytes),
		UserID:   row.UserID,
		FileName: row.FileName,
		Format:   format,
		Task:     asr.Task(row.Task),
		Language: row.Language.String,
		Segments: segments,
	}, nil
}

func encodeSegments(segments []transcript.Segment) ([]byte, error) {
	if segments == nil {
		segments = []transcript.Segment{}
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return nil, fmt.Errorf("marshaling segments: %w", err)
	}
	return data, nil
}

func decodeSegments(data []byte) ([]transcript.Segment, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var segments []transcript.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("unmarshaling segments: %w", err)
	}
	return segments, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
