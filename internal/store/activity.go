package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/bramble/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.ActivityEntry, error) {
	var e model.ActivityEntry
	var memberID sql.NullInt64

	err := scanner.Scan(&e.ID, &e.Kind, &memberID, &e.Points, &e.Detail, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if memberID.Valid {
		e.MemberID = &memberID.Int64
	}
	return &e, nil
}

const activityCols = `id, kind, member_id, points, detail, created_at`

func (s *ActivityStore) Create(kind string, memberID *int64, points int, detail string) (*model.ActivityEntry, error) {
	var mID sql.NullInt64
	if memberID != nil {
		mID = sql.NullInt64{Int64: *memberID, Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO activity_log (id, kind, member_id, points, detail) VALUES (?, ?, ?, ?, ?)`,
		id, kind, mID, points, detail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+activityCols+` FROM activity_log WHERE id = ?`, id)
	return scanActivity(row)
}

func (s *ActivityStore) ListRecent(limit int) ([]model.ActivityEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM activity_log ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		e, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
