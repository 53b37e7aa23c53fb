package storage

import (
	"errors"
	"sync"

	"github.com/loadwise/palletizer/internal/export"
	"github.com/loadwise/palletizer/internal/pallet"
)

const maxBatchSize = 500

var (
	// ErrInvalidBatch indicates the provided item batch violates validation rules.
	ErrInvalidBatch = errors.New("item batch must contain between 1 and 500 items")
	// ErrInvalidConfig indicates the pallet configuration is not usable.
	ErrInvalidConfig = errors.New("pallet configuration must have a positive count and capacities")
	// ErrNoResult indicates no optimization result has been stored yet.
	ErrNoResult = errors.New("no optimization result available")
)

// Storage provides access to the current item batch, the pallet
// configuration, and the most recent optimization result.
type Storage interface {
	GetItems() ([]pallet.Item, error)
	SetItems(items []pallet.Item) error
	GetConfig() (pallet.Config, error)
	SetConfig(cfg pallet.Config) error
	GetLastRecord() (export.Record, error)
	SetLastRecord(rec export.Record) error
}

// MemoryStorage keeps the working state in-memory and guards access with
// a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  []pallet.Item
	config pallet.Config
	last   *export.Record
}

// NewMemoryStorage initialises storage with the default pallet
// configuration and an empty item batch.
func NewMemoryStorage(units pallet.Units) *MemoryStorage {
	return &MemoryStorage{
		config: DefaultConfig(units),
	}
}

// DefaultConfig returns the configuration used before a caller supplies
// one: two PBR pallets.
func DefaultConfig(units pallet.Units) pallet.Config {
	cfg, _ := pallet.NewPresetConfig(pallet.PresetPBR, 2, units)
	return cfg
}

// GetItems returns a defensive copy of the current item batch.
func (s *MemoryStorage) GetItems() ([]pallet.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneItems(s.items), nil
}

// SetItems validates and stores an item batch.
func (s *MemoryStorage) SetItems(items []pallet.Item) error {
	if len(items) == 0 || len(items) > maxBatchSize {
		return ErrInvalidBatch
	}

	s.mu.Lock()
	s.items = cloneItems(items)
	s.mu.Unlock()

	return nil
}

// GetConfig returns the current pallet configuration.
func (s *MemoryStorage) GetConfig() (pallet.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config, nil
}

// SetConfig validates and stores the pallet configuration.
func (s *MemoryStorage) SetConfig(cfg pallet.Config) error {
	if cfg.Count < 1 || cfg.CapacityMass <= 0 || cfg.CapacityVolume <= 0 {
		return ErrInvalidConfig
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	return nil
}

// GetLastRecord returns a copy of the most recent optimization result.
func (s *MemoryStorage) GetLastRecord() (export.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return export.Record{}, ErrNoResult
	}
	return cloneRecord(*s.last), nil
}

// SetLastRecord stores an optimization result.
func (s *MemoryStorage) SetLastRecord(rec export.Record) error {
	clone := cloneRecord(rec)

	s.mu.Lock()
	s.last = &clone
	s.mu.Unlock()

	return nil
}

func cloneItems(src []pallet.Item) []pallet.Item {
	out := make([]pallet.Item, len(src))
	copy(out, src)
	return out
}

func cloneRecord(rec export.Record) export.Record {
	allocation := make([]export.AllocationEntry, len(rec.Allocation))
	copy(allocation, rec.Allocation)
	rec.Allocation = allocation
	return rec
}
