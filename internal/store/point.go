package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bramble/internal/model"
)

type PointStore struct {
	db *sql.DB
}

func NewPointStore(db *sql.DB) *PointStore {
	return &PointStore{db: db}
}

func scanAward(scanner interface{ Scan(...any) error }) (*model.PointAward, error) {
	var a model.PointAward
	err := scanner.Scan(&a.ID, &a.MemberID, &a.Points, &a.Source, &a.Reference, &a.Note, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const awardCols = `id, member_id, points, source, reference, note, created_at`

func (s *PointStore) CreateAward(memberID int64, points int, source, reference, note string) (*model.PointAward, error) {
	result, err := s.db.Exec(
		`INSERT INTO point_awards (member_id, points, source, reference, note) VALUES (?, ?, ?, ?, ?)`,
		memberID, points, source, reference, note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert award: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+awardCols+` FROM point_awards WHERE id = ?`, id)
	return scanAward(row)
}

func (s *PointStore) ListAwardsByMember(memberID int64) ([]model.PointAward, error) {
	rows, err := s.db.Query(
		`SELECT `+awardCols+` FROM point_awards WHERE member_id = ? ORDER BY created_at DESC, id DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list awards: %w", err)
	}
	defer rows.Close()

	var awards []model.PointAward
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan award: %w", err)
		}
		awards = append(awards, *a)
	}
	return awards, rows.Err()
}

// GetBalance computes the balance for a single member: earned - spent.
func (s *PointStore) GetBalance(memberID int64) (*model.PointBalance, error) {
	var earned sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM point_awards WHERE member_id = ?`,
		memberID,
	).Scan(&earned)
	if err != nil {
		return nil, fmt.Errorf("sum points earned: %w", err)
	}

	var spent sql.NullInt64
	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM point_redemptions WHERE member_id = ?`,
		memberID,
	).Scan(&spent)
	if err != nil {
		return nil, fmt.Errorf("sum points spent: %w", err)
	}

	var name string
	err = s.db.QueryRow(`SELECT name FROM family_members WHERE id = ?`, memberID).Scan(&name)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get member name: %w", err)
	}

	totalEarned := int(earned.Int64)
	totalSpent := int(spent.Int64)

	return &model.PointBalance{
		MemberID:    memberID,
		MemberName:  name,
		TotalEarned: totalEarned,
		TotalSpent:  totalSpent,
		Balance:     totalEarned - totalSpent,
	}, nil
}
