package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/handpose"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Recording is a stored session of raw detections.
type Recording struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FrameCount int       `json:"frame_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordedFrame holds the raw hands detected in one frame of a recording.
type RecordedFrame struct {
	Seq         int             `json:"seq"`
	TimestampMs int64           `json:"timestamp_ms"`
	Hands       []handpose.Hand `json:"hands"`
}

// RecordingRepository provides CRUD operations for recordings and their frames.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create inserts a new, empty recording. A random ID is assigned when
// rec.ID is empty.
func (r *RecordingRepository) Create(rec *Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()
	rec.FrameCount = 0

	_, err := r.db.Exec(
		`INSERT INTO recordings (id, name, frame_count, created_at) VALUES (?, ?, 0, ?)`,
		rec.ID, rec.Name, rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*Recording, error) {
	rec := &Recording{}
	err := r.db.QueryRow(
		`SELECT id, name, frame_count, created_at FROM recordings WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Name, &rec.FrameCount, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, name, frame_count, created_at FROM recordings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec := &Recording{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.FrameCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendFrames adds frames to the end of a recording in a single
// transaction. Sequence numbers continue from the current frame count; the
// Seq field of the given frames is ignored.
func (r *RecordingRepository) AppendFrames(id string, frames []RecordedFrame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT frame_count FROM recordings WHERE id = ?`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO recording_frames (recording_id, seq, timestamp_ms, hands) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range frames {
		hands := f.Hands
		if hands == nil {
			hands = []handpose.Hand{}
		}
		data, err := json.Marshal(hands)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
		if _, err := stmt.Exec(id, count+i, f.TimestampMs, string(data)); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE recordings SET frame_count = ? WHERE id = ?`, count+len(frames), id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Frames retrieves every frame of a recording in sequence order.
func (r *RecordingRepository) Frames(id string) ([]RecordedFrame, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT seq, timestamp_ms, hands FROM recording_frames
		 WHERE recording_id = ?
		 ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []RecordedFrame
	for rows.Next() {
		var f RecordedFrame
		var data string
		if err := rows.Scan(&f.Seq, &f.TimestampMs, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &f.Hands); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", f.Seq, err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// HandSequence returns the hands of each frame, ready for handpose.Replay.
func HandSequence(frames []RecordedFrame) [][]handpose.Hand {
	seq := make([][]handpose.Hand, len(frames))
	for i, f := range frames {
		seq[i] = f.Hands
	}
	return seq
}
