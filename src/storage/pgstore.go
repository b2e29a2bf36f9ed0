// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// PostgresResultStore persists extraction results in Postgres so the
// cache survives restarts and is shared across instances.
type PostgresResultStore struct {
	db *sql.DB
}

func NewPostgresResultStore(db *sql.DB) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

// Migrate creates the results table if it does not already exist.
func (s *PostgresResultStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS EXTRACTION_RESULTS (
			FILE_HASH  TEXT NOT NULL,
			MODE       TEXT NOT NULL,
			TASK_ID    TEXT NOT NULL,
			RESULT     JSONB NOT NULL,
			CREATED_AT TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (FILE_HASH, MODE)
		)`)
	if err != nil {
		return fmt.Errorf("migrate extraction_results: %w", err)
	}
	return nil
}

func (s *PostgresResultStore) SaveResult(ctx context.Context, entry CachedExtraction) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO EXTRACTION_RESULTS (FILE_HASH, MODE, TASK_ID, RESULT)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (FILE_HASH, MODE)
		DO UPDATE SET TASK_ID = $3, RESULT = $4, CREATED_AT = NOW()`,
		entry.FileHash, string(entry.Mode), entry.TaskID, payload)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *PostgresResultStore) FindCached(ctx context.Context, fileHash string, mode model.Mode) (CachedExtraction, bool, error) {
	entry := CachedExtraction{FileHash: fileHash, Mode: mode}
	var payload []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT TASK_ID, RESULT, CREATED_AT
		FROM EXTRACTION_RESULTS
		WHERE FILE_HASH = $1 AND MODE = $2`,
		fileHash, string(mode)).Scan(&entry.TaskID, &payload, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return CachedExtraction{}, false, nil
	}
	if err != nil {
		return CachedExtraction{}, false, fmt.Errorf("find cached result: %w", err)
	}

	if err := json.Unmarshal(payload, &entry.Result); err != nil {
		return CachedExtraction{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return entry, true, nil
}

func (s *PostgresResultStore) ListCached(ctx context.Context) ([]CachedExtraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT FILE_HASH, MODE, TASK_ID, RESULT, CREATED_AT
		FROM EXTRACTION_RESULTS
		ORDER BY CREATED_AT DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cached results: %w", err)
	}
	defer rows.Close()

	var out []CachedExtraction
	for rows.Next() {
		var entry CachedExtraction
		var mode string
		var payload []byte
		if err := rows.Scan(&entry.FileHash, &mode, &entry.TaskID, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cached result: %w", err)
		}
		entry.Mode = model.Mode(mode)
		if err := json.Unmarshal(payload, &entry.Result); err != nil {
			return nil, fmt.Errorf("decode cached result: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
