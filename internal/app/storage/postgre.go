package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

const ipEntriesTable = "ip_entries"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresStorage struct {
	DB *sql.DB
}

func InitializePostgres(ctx context.Context, uri string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("initializePostgres: error opening database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializePostgres: error verifying database connection: %w", err)
	}

	err = createIfNotExists(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializePostgres: error creating database structure: %w", err)
	}
	return &PostgresStorage{DB: db}, nil
}

func createIfNotExists(ctx context.Context, db *sql.DB) error {
	createTablesQuery := `
		CREATE TABLE IF NOT EXISTS ip_entries (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			ip TEXT NOT NULL,
			reversed_ip TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_ip_entries_created_at ON ip_entries(created_at DESC, seq DESC);`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("createIfNotExists: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, createTablesQuery)
	if err != nil {
		return fmt.Errorf("createIfNotExists: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("createIfNotExists: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error) {
	record := models.AddressRecord{
		ID:              uuid.NewString(),
		Address:         address,
		ReversedAddress: reversed,
		CreatedAt:       now(),
	}

	_, err := psql.Insert(ipEntriesTable).
		Columns("id", "ip", "reversed_ip", "created_at").
		Values(record.ID, record.Address, record.ReversedAddress, record.CreatedAt).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return models.AddressRecord{}, fmt.Errorf("createRecord: error inserting record: %w", err)
	}
	return record, nil
}

func (s *PostgresStorage) ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error) {
	rows, err := psql.Select("id::text", "ip", "reversed_ip", "created_at").
		From(ipEntriesTable).
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(max(limit, 0))).
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listRecent: error selecting records: %w", err)
	}
	defer rows.Close()

	result := []models.AddressRecord{}
	for rows.Next() {
		var (
			record    models.AddressRecord
			createdAt time.Time
		)
		if err := rows.Scan(&record.ID, &record.Address, &record.ReversedAddress, &createdAt); err != nil {
			return nil, fmt.Errorf("listRecent: error scanning column: %w", err)
		}
		record.CreatedAt = createdAt.UTC()
		result = append(result, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("listRecent: rows error: %w", err)
	}
	return result, nil
}

func (s *PostgresStorage) ClearHistory(ctx context.Context) error {
	conn, err := stdlib.AcquireConn(s.DB)
	if err != nil {
		return fmt.Errorf("clearHistory: error acquiring conn: %w", err)
	}
	defer stdlib.ReleaseConn(s.DB, conn)

	_, err = conn.Exec(ctx, "DELETE FROM "+pgx.Identifier{ipEntriesTable}.Sanitize())
	if err != nil {
		return fmt.Errorf("clearHistory: error deleting records: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close(_ context.Context) error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
