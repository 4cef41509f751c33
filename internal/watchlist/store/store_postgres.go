package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"vigil/internal/watchlist"
	"vigil/pkg/sentinel"
)

// PostgresStore persists watchlist entities in PostgreSQL with a pgvector
// column for name embeddings.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entityColumns = `id, unique_id, name, name_vector, aliases, dates_of_birth,
	gender, nationality, country_of_residence, risk_category, additional_info, entity_type`

// Upsert creates or updates an entity in a single statement. ON CONFLICT on
// the unique_id constraint serializes concurrent upserts of the same key at
// the row level; xmax = 0 distinguishes a fresh insert from an update.
// Partial-update semantics live in SQL: an empty dates array or null risk
// category keeps the stored value.
func (s *PostgresStore) Upsert(ctx context.Context, params watchlist.UpsertParams) (watchlist.Outcome, error) {
	var riskCategory sql.NullString
	if params.RiskCategory != nil {
		riskCategory = sql.NullString{String: *params.RiskCategory, Valid: true}
	}

	var inserted bool
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO watchlist_entities (unique_id, name, name_vector, dates_of_birth, risk_category, entity_type)
		VALUES ($1, $2, $3, $4::date[], $5, $6)
		ON CONFLICT (unique_id) DO UPDATE SET
			name = EXCLUDED.name,
			name_vector = EXCLUDED.name_vector,
			dates_of_birth = CASE
				WHEN cardinality(EXCLUDED.dates_of_birth) > 0 THEN EXCLUDED.dates_of_birth
				ELSE watchlist_entities.dates_of_birth
			END,
			risk_category = COALESCE(EXCLUDED.risk_category, watchlist_entities.risk_category)
		RETURNING (xmax = 0)`,
		params.UniqueID,
		params.Name,
		pgvector.NewVector(params.NameVector),
		pq.Array(formatDates(params.DatesOfBirth)),
		riskCategory,
		watchlist.DefaultEntityType,
	).Scan(&inserted)
	if err != nil {
		return "", fmt.Errorf("upsert watchlist entity %s: %w", params.UniqueID, err)
	}

	if inserted {
		return watchlist.OutcomeCreated, nil
	}
	return watchlist.OutcomeUpdated, nil
}

func (s *PostgresStore) FindByUniqueID(ctx context.Context, uniqueID string) (watchlist.Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entityColumns+`
		FROM watchlist_entities
		WHERE unique_id = $1`, uniqueID)

	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return watchlist.Entity{}, sentinel.ErrNotFound
		}
		return watchlist.Entity{}, fmt.Errorf("find watchlist entity %s: %w", uniqueID, err)
	}
	return entity, nil
}

// SearchByVector retrieves every entity within maxDistance of the query
// vector using the pgvector cosine distance operator. Rows come back in
// whatever order the store produces them; callers treat that order as the
// retrieval order.
func (s *PostgresStore) SearchByVector(ctx context.Context, vector []float32, maxDistance float64) ([]watchlist.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+`
		FROM watchlist_entities
		WHERE name_vector <=> $1 < $2`,
		pgvector.NewVector(vector), maxDistance)
	if err != nil {
		return nil, fmt.Errorf("search watchlist by vector: %w", err)
	}
	defer rows.Close()

	var entities []watchlist.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist entity: %w", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (watchlist.Entity, error) {
	var (
		entity       watchlist.Entity
		nameVector   pgvector.Vector
		aliases      []string
		dates        []string
		gender       sql.NullString
		nationality  sql.NullString
		residence    sql.NullString
		riskCategory sql.NullString
		additional   sql.NullString
	)
	err := row.Scan(
		&entity.ID, &entity.UniqueID, &entity.Name, &nameVector,
		pq.Array(&aliases), pq.Array(&dates),
		&gender, &nationality, &residence, &riskCategory, &additional, &entity.EntityType,
	)
	if err != nil {
		return watchlist.Entity{}, err
	}

	entity.NameVector = nameVector.Slice()
	entity.Aliases = aliases
	entity.DatesOfBirth, err = parseDates(dates)
	if err != nil {
		return watchlist.Entity{}, err
	}
	entity.Gender = gender.String
	entity.Nationality = nationality.String
	entity.CountryOfResidence = residence.String
	entity.RiskCategory = riskCategory.String
	entity.AdditionalInfo = additional.String
	return entity, nil
}

const dateLayout = "2006-01-02"

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dateLayout)
	}
	return out
}

func parseDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		// Postgres may render dates with a trailing time component depending
		// on the column type; keep only the date part.
		if len(s) > len(dateLayout) {
			s = s[:len(dateLayout)]
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", s, err)
		}
		out[i] = d
	}
	return out, nil
}
