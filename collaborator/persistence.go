// Copyright 2024 The RuleKit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collaborator

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/value"
)

// Persistence is the rule store collaborator: it resolves a rule_code to a
// Document (for evaluate_by_code), bulk-loads constants by name, and
// accepts audit events fire-and-forget (spec.md §4.7, §5 "Rule definitions
// in the Persistence collaborator: versioned; concurrent updates resolved
// by an explicit version/timestamp supplied by the caller").
type Persistence interface {
	LoadRuleByCode(ctx context.Context, ruleCode string) (*rule.Document, error)
	LoadConstants(ctx context.Context, names []string) (map[string]value.Value, error)
	RecordAudit(ruleCode string, events []evalctx.AuditEvent)
}

// ErrRuleNotFound is returned by LoadRuleByCode when no stored rule matches
// the given code.
var ErrRuleNotFound = errors.New("rule code not found in the rule store")

// ruleRecord pairs a stored document with the version/timestamp a
// concurrent updater must supply to replace it.
type ruleRecord struct {
	doc     *rule.Document
	version int64
}

// MemoryPersistence is an in-process rule store and constant table, guarded
// by a single mutex in the same spirit as the teacher's PreparedDataCache:
// reads and writes are infrequent enough relative to evaluation volume that
// one lock is simpler than sharding.
type MemoryPersistence struct {
	mu        sync.RWMutex
	rules     map[string]ruleRecord
	constants map[string]value.Value
	sink      func(ruleCode string, events []evalctx.AuditEvent)
}

// NewMemoryPersistence builds an empty store. auditSink receives every
// RecordAudit call; pass nil to discard audit events.
func NewMemoryPersistence(auditSink func(ruleCode string, events []evalctx.AuditEvent)) *MemoryPersistence {
	return &MemoryPersistence{
		rules:     map[string]ruleRecord{},
		constants: map[string]value.Value{},
		sink:      auditSink,
	}
}

// PutRule stores or replaces a rule under ruleCode. version must be
// strictly greater than any version previously stored for the same code,
// matching the "explicit version/timestamp supplied by the caller"
// concurrency rule; a stale write is rejected rather than silently
// overwriting a newer one.
func (m *MemoryPersistence) PutRule(ruleCode string, doc *rule.Document, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rules[ruleCode]; ok && version <= existing.version {
		return errors.Errorf("stale write for rule %q: version %d is not newer than stored version %d", ruleCode, version, existing.version)
	}
	m.rules[ruleCode] = ruleRecord{doc: doc, version: version}
	return nil
}

// PutConstant sets a constant's current value in the store.
func (m *MemoryPersistence) PutConstant(name string, v value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constants[name] = v
}

func (m *MemoryPersistence) LoadRuleByCode(_ context.Context, ruleCode string) (*rule.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.rules[ruleCode]
	if !ok {
		return nil, ErrRuleNotFound
	}
	return rec.doc, nil
}

// LoadConstants bulk-loads every requested name, omitting any not present in
// the store; the caller falls back to a constant's inline default (spec.md
// §4.6 "Missing constants").
func (m *MemoryPersistence) LoadConstants(_ context.Context, names []string) (map[string]value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]value.Value, len(names))
	for _, n := range names {
		if v, ok := m.constants[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

func (m *MemoryPersistence) RecordAudit(ruleCode string, events []evalctx.AuditEvent) {
	if m.sink != nil {
		m.sink(ruleCode, events)
	}
}
