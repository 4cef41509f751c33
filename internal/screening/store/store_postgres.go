package store

import (
	"context"
	"database/sql"
	"fmt"

	"vigil/internal/screening"
)

// PostgresRecordStore persists screening records and their match rows in
// PostgreSQL.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Create(ctx context.Context, record screening.Record) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO screening_records (name, date_of_birth, screening_type, screening_time, matched)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id`,
		record.Name, record.DateOfBirth, record.ScreeningType, record.ScreeningTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create screening record: %w", err)
	}
	return id, nil
}

// Finalize commits the terminal record update and its match rows in one
// transaction. On any failure the whole finalization rolls back, leaving the
// pending record from Create in place for the audit trail.
func (s *PostgresRecordStore) Finalize(ctx context.Context, screeningID int64, params screening.FinalizeParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE screening_records
		SET matched = $2, risk_score = $3, explanation = $4
		WHERE id = $1 AND risk_score IS NULL`,
		screeningID, params.Matched, params.RiskScore, params.Explanation,
	)
	if err != nil {
		return fmt.Errorf("finalize screening record %d: %w", screeningID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize screening record %d: %w", screeningID, err)
	}
	if affected == 0 {
		return fmt.Errorf("finalize screening record %d: record missing or already finalized", screeningID)
	}

	for _, match := range params.Matches {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO screening_matches (screening_id, watchlist_entity_id, match_type, match_score)
			VALUES ($1, $2, $3, $4)`,
			screeningID, match.WatchlistEntityID, string(match.MatchType), match.MatchScore,
		)
		if err != nil {
			return fmt.Errorf("insert screening match for record %d: %w", screeningID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize for record %d: %w", screeningID, err)
	}
	return nil
}
