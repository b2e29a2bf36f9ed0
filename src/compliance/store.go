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
	"sync"
	"time"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// RuleSet is one automated research run for a single jurisdiction.
// It starts inert (unverified, inactive); a human review flips Verified and
// Active to make it eligible for resolution.
type RuleSet struct {
	JurisdictionKey string
	Requirements    []model.Requirement
	Source          string
	Verified        bool
	Active          bool
	ResearchedAt    time.Time
	VerifiedBy      string
}

// RuleStore holds discovered rule sets. FindActive is the single
// human-in-the-loop gate: it must only ever return rule sets with
// Active (and Verified) set, so unreviewed research can never influence
// a resolution. The found flag distinguishes "no active rule set for this
// key" from an active rule set that happens to hold zero requirements.
type RuleStore interface {
	FindActive(ctx context.Context, jurisdictionKey string) (reqs []model.Requirement, found bool, err error)
}

// MemoryRuleStore is the in-process RuleStore, used in tests and when the
// service runs without a database.
type MemoryRuleStore struct {
	mu   sync.Mutex
	sets []RuleSet
}

func NewMemoryRuleStore() *MemoryRuleStore {
	return &MemoryRuleStore{}
}

// Insert stores a research run. Incoming requirements are stamped as
// discovered provenance.
func (s *MemoryRuleStore) Insert(set RuleSet) {
	for i := range set.Requirements {
		set.Requirements[i].Provenance = model.ProvenanceDiscovered
	}
	if set.ResearchedAt.IsZero() {
		set.ResearchedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.sets = append(s.sets, set)
	s.mu.Unlock()
}

// Activate marks every rule set for a key as verified and active.
func (s *MemoryRuleStore) Activate(jurisdictionKey, verifiedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sets {
		if s.sets[i].JurisdictionKey == jurisdictionKey {
			s.sets[i].Verified = true
			s.sets[i].Active = true
			s.sets[i].VerifiedBy = verifiedBy
		}
	}
}

func (s *MemoryRuleStore) FindActive(_ context.Context, jurisdictionKey string) ([]model.Requirement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Latest active run wins.
	for i := len(s.sets) - 1; i >= 0; i-- {
		set := s.sets[i]
		if set.JurisdictionKey == jurisdictionKey && set.Active && set.Verified {
			out := make([]model.Requirement, len(set.Requirements))
			copy(out, set.Requirements)
			return out, true, nil
		}
	}
	return nil, false, nil
}
