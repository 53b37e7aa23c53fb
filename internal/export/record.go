// Package export owns the serializable result record and the tabular
// formats built on top of it: JSON, delimited allocation exports, item
// ingestion, and ERP-flavoured documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/loadwise/palletizer/internal/metrics"
	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
)

// AllocationEntry records one loaded item's placement plus a snapshot of
// the item itself, so a record stays interpretable without the original
// batch.
type AllocationEntry struct {
	ItemID           int         `json:"item_id"`
	PalletIndex      int         `json:"pallet_index"`
	OrientationIndex int         `json:"orientation_index"`
	Item             pallet.Item `json:"item"`
}

// Record is the canonical exported shape of one optimization run.
type Record struct {
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	Config     pallet.Config         `json:"config"`
	Status     optimizer.SolveStatus `json:"status"`
	Objective  int64                 `json:"objective"`
	Metrics    metrics.Report        `json:"metrics"`
	Allocation []AllocationEntry     `json:"allocation"`
}

// NewRecord assembles a record from one solved run. Allocation entries
// are ordered by pallet index, then by item index, so exports are
// deterministic.
func NewRecord(items []pallet.Item, sol *optimizer.Solution, cfg pallet.Config, report metrics.Report, now time.Time) Record {
	allocation := make([]AllocationEntry, 0, sol.Loaded())
	for k := 0; k < cfg.Count; k++ {
		for _, item := range items {
			a, ok := sol.Assignment(item.ID)
			if !ok || a.Pallet != k {
				continue
			}
			allocation = append(allocation, AllocationEntry{
				ItemID:           item.ID,
				PalletIndex:      a.Pallet,
				OrientationIndex: a.Orientation,
				Item:             item,
			})
		}
	}

	return Record{
		ID:         uuid.NewString(),
		CreatedAt:  now.UTC(),
		Config:     cfg,
		Status:     sol.Status(),
		Objective:  sol.Objective(),
		Metrics:    report,
		Allocation: allocation,
	}
}

// EncodeJSON writes the record as indented JSON.
func (r Record) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// DecodeJSON reads a record previously written by EncodeJSON.
func DecodeJSON(r io.Reader) (Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
