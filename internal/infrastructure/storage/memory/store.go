// Package memory is an in-process entity store keyed by identifier. It backs
// dev mode and service tests; transactions snapshot the maps and restore
// them on error.
package memory

import (
	"context"
	"maps"
	"sync"

	"supplyfin/internal/core/id"
	"supplyfin/internal/core/tx"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/domain/tariff"
)

// SignatureRef identifies a removed signature set.
type SignatureRef struct {
	SubjectType string
	SubjectID   id.ID
}

type state struct {
	companies  map[id.ID]company.Company
	agreements map[id.ID]company.FactoringAgreement
	contracts  map[id.ID]contract.Contract
	supplies   map[id.ID]supply.Supply
	registries map[id.ID]registry.Registry
	discounts  map[id.ID]registry.Discount
	tariffs    map[id.ID][]tariff.Tariff
	freeDays   map[id.ID]calendar.FreeDay
	settings   map[id.ID]calendar.DiscountSettings
	sequences  map[string]int64
	removed    []SignatureRef
}

func (st *state) clone() *state {
	return &state{
		companies:  maps.Clone(st.companies),
		agreements: maps.Clone(st.agreements),
		contracts:  maps.Clone(st.contracts),
		supplies:   maps.Clone(st.supplies),
		registries: maps.Clone(st.registries),
		discounts:  maps.Clone(st.discounts),
		tariffs:    maps.Clone(st.tariffs),
		freeDays:   maps.Clone(st.freeDays),
		settings:   maps.Clone(st.settings),
		sequences:  maps.Clone(st.sequences),
		removed:    append([]SignatureRef(nil), st.removed...),
	}
}

// Store holds every entity in memory.
type Store struct {
	mu sync.Mutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: &state{
		companies:  make(map[id.ID]company.Company),
		agreements: make(map[id.ID]company.FactoringAgreement),
		contracts:  make(map[id.ID]contract.Contract),
		supplies:   make(map[id.ID]supply.Supply),
		registries: make(map[id.ID]registry.Registry),
		discounts:  make(map[id.ID]registry.Discount),
		tariffs:    make(map[id.ID][]tariff.Tariff),
		freeDays:   make(map[id.ID]calendar.FreeDay),
		settings:   make(map[id.ID]calendar.DiscountSettings),
		sequences:  make(map[string]int64),
	}}
}

type txKey struct{}

// RunInTransaction implements tx.Manager. The store lock is held for the
// whole of fn; nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// do runs fn with the lock held unless ctx already is inside a transaction.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// RemovedSignatures returns every signature removal recorded so far.
func (s *Store) RemovedSignatures() []SignatureRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SignatureRef(nil), s.st.removed...)
}

// RemoveSignatures implements registry.SignatureRemover.
func (s *Store) RemoveSignatures(ctx context.Context, subjectType string, subjectID id.ID) error {
	return s.do(ctx, func(st *state) error {
		st.removed = append(st.removed, SignatureRef{SubjectType: subjectType, SubjectID: subjectID})
		return nil
	})
}

var (
	_ tx.Manager                = (*Store)(nil)
	_ registry.SignatureRemover = (*Store)(nil)
)
