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

package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// PostgresRuleStore keeps discovered rule sets in the COMPLIANCE_RULES
// table, requirements as a JSON column.
type PostgresRuleStore struct {
	db *sql.DB
}

func NewPostgresRuleStore(ctx context.Context, db *sql.DB) (*PostgresRuleStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS COMPLIANCE_RULES (
			ID SERIAL PRIMARY KEY,
			JURISDICTION_KEY TEXT NOT NULL,
			REQUIREMENTS JSONB NOT NULL,
			SOURCE TEXT NOT NULL DEFAULT 'scout',
			IS_VERIFIED BOOLEAN NOT NULL DEFAULT FALSE,
			IS_ACTIVE BOOLEAN NOT NULL DEFAULT FALSE,
			RESEARCHED_AT TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			VERIFIED_BY TEXT
		)`)
	if err != nil {
		return nil, fmt.Errorf("create compliance_rules table: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS COMPLIANCE_RULES_KEY_IDX
		ON COMPLIANCE_RULES (JURISDICTION_KEY, IS_ACTIVE)`)
	if err != nil {
		return nil, fmt.Errorf("create compliance_rules index: %w", err)
	}
	return &PostgresRuleStore{db: db}, nil
}

// Insert stores a research run as inert (unverified, inactive).
func (s *PostgresRuleStore) Insert(ctx context.Context, set RuleSet) error {
	for i := range set.Requirements {
		set.Requirements[i].Provenance = model.ProvenanceDiscovered
	}
	encoded, err := json.Marshal(set.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO COMPLIANCE_RULES (JURISDICTION_KEY, REQUIREMENTS, SOURCE)
		VALUES ($1, $2, $3)`,
		set.JurisdictionKey, encoded, set.Source)
	return err
}

// Activate flips the human-review gate for every run of a key.
func (s *PostgresRuleStore) Activate(ctx context.Context, jurisdictionKey, verifiedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE COMPLIANCE_RULES
		SET IS_VERIFIED = TRUE, IS_ACTIVE = TRUE, VERIFIED_BY = $2
		WHERE JURISDICTION_KEY = $1`,
		jurisdictionKey, verifiedBy)
	return err
}

func (s *PostgresRuleStore) FindActive(ctx context.Context, jurisdictionKey string) ([]model.Requirement, bool, error) {
	var encoded []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT REQUIREMENTS FROM COMPLIANCE_RULES
		WHERE JURISDICTION_KEY = $1 AND IS_ACTIVE AND IS_VERIFIED
		ORDER BY RESEARCHED_AT DESC
		LIMIT 1`,
		jurisdictionKey).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query compliance_rules: %w", err)
	}

	var reqs []model.Requirement
	if err := json.Unmarshal(encoded, &reqs); err != nil {
		return nil, false, fmt.Errorf("decode requirements: %w", err)
	}
	return reqs, true, nil
}
