package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"airbnb-explorer/models"
	"airbnb-explorer/utils"
)

// PostgresWriter persists dataset snapshots to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id            UUID PRIMARY KEY,
			listing_count INTEGER     NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS snapshot_listings (
			snapshot_id       UUID          NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			listing_id        TEXT          NOT NULL,
			name              TEXT          NOT NULL DEFAULT '',
			room_type         TEXT          NOT NULL DEFAULT '',
			neighbourhood     TEXT          NOT NULL DEFAULT '',
			price             NUMERIC(10,2) NOT NULL DEFAULT 0,
			bedrooms          INTEGER       NOT NULL DEFAULT 0,
			availability_365  INTEGER       NOT NULL DEFAULT 0,
			availability_tier TEXT          NOT NULL DEFAULT '',
			latitude          DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (snapshot_id, listing_id)
		);

		CREATE TABLE IF NOT EXISTS snapshot_neighbourhoods (
			snapshot_id   UUID             NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			neighbourhood TEXT             NOT NULL,
			listing_count INTEGER          NOT NULL,
			avg_price     DOUBLE PRECISION NOT NULL,
			avg_bedrooms  DOUBLE PRECISION NOT NULL,
			avg_rating    DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (snapshot_id, neighbourhood)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshot_listings_neighbourhood ON snapshot_listings(neighbourhood);
		CREATE INDEX IF NOT EXISTS idx_snapshot_listings_room_type     ON snapshot_listings(room_type);
	`)
	return err
}

// WriteSnapshot stores listings and stats under a new snapshot id in one transaction.
func (pw *PostgresWriter) WriteSnapshot(ctx context.Context, listings []*models.Listing, stats map[string]models.AggregateStats) (string, error) {
	id := uuid.New().String()

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, listing_count, created_at) VALUES ($1, $2, $3)`,
		id, len(listings), time.Now()); err != nil {
		return "", fmt.Errorf("postgres: insert snapshot: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := insertListingBatch(ctx, tx, id, listings[i:end]); err != nil {
			return "", err
		}
	}

	if err := insertNeighbourhoods(ctx, tx, id, stats); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("postgres: commit: %w", err)
	}
	return id, nil
}

const listingColumns = 11

func insertListingBatch(ctx context.Context, tx *sql.Tx, snapshotID string, batch []*models.Listing) error {
	if len(batch) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		valueStrings = append(valueStrings, placeholders(idx*listingColumns, listingColumns))
		valueArgs = append(valueArgs,
			snapshotID, l.ID, l.Name, l.RoomType, l.Neighbourhood, l.Price,
			l.Bedrooms, l.Availability365, string(l.AvailabilityTier), l.Latitude, l.Longitude)
	}

	query := fmt.Sprintf(`
		INSERT INTO snapshot_listings (snapshot_id, listing_id, name, room_type, neighbourhood, price,
			bedrooms, availability_365, availability_tier, latitude, longitude)
		VALUES %s
		ON CONFLICT (snapshot_id, listing_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert listings: %w", err)
	}
	return nil
}

func insertNeighbourhoods(ctx context.Context, tx *sql.Tx, snapshotID string, stats map[string]models.AggregateStats) error {
	if len(stats) == 0 {
		return nil
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	const cols = 6
	valueStrings := make([]string, 0, len(names))
	valueArgs := make([]interface{}, 0, len(names)*cols)
	for idx, name := range names {
		st := stats[name]
		valueStrings = append(valueStrings, placeholders(idx*cols, cols))
		valueArgs = append(valueArgs, snapshotID, name, st.Count, st.Price, st.Bedrooms, st.ReviewScoresRating)
	}

	query := fmt.Sprintf(`
		INSERT INTO snapshot_neighbourhoods (snapshot_id, neighbourhood, listing_count, avg_price, avg_bedrooms, avg_rating)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert neighbourhoods: %w", err)
	}
	return nil
}

// placeholders renders "($base+1,...,$base+n)".
func placeholders(base, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", base+i+1)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// LatestSnapshot returns the id and creation time of the newest snapshot.
func (pw *PostgresWriter) LatestSnapshot(ctx context.Context) (string, time.Time, error) {
	var id string
	var created time.Time
	err := pw.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM snapshots ORDER BY created_at DESC LIMIT 1`).Scan(&id, &created)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("postgres: latest snapshot: %w", err)
	}
	return id, created, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
