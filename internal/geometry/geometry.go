// Package geometry maps a solved Solution onto 3D coordinates for
// rendering. The layout is presentation-only: items assigned to a pallet
// are stacked as a vertical tower in item-index order, with no footprint
// or overlap avoidance, and pallets are spread along the X axis purely
// so they do not overlap visually. The projection never feeds back into
// the optimization model.
package geometry

import (
	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
)

// PalletSpacing is the distance in metres between pallet origins along
// the X axis. It has no physical meaning.
const PalletSpacing = 2.5

// Placement is one item's axis-aligned box in metres. X coordinates
// include the pallet's visualization offset; Y and Z are pallet-local.
type Placement struct {
	ItemID int     `json:"item_id"`
	Name   string  `json:"name"`
	Pallet int     `json:"pallet_index"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	Z0     float64 `json:"z0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	Z1     float64 `json:"z1"`
}

// Project places every loaded item deterministically: per pallet a
// height cursor starts at zero and advances by each item's oriented
// height, in ascending item-index order.
func Project(items []pallet.Item, sol *optimizer.Solution, cfg pallet.Config) []Placement {
	placements := make([]Placement, 0, len(items))

	for k := 0; k < cfg.Count; k++ {
		offsetX := float64(k) * PalletSpacing
		cursor := 0.0
		for _, item := range items {
			a, ok := sol.Assignment(item.ID)
			if !ok || a.Pallet != k {
				continue
			}
			dims := item.Orientations()[a.Orientation]
			placements = append(placements, Placement{
				ItemID: item.ID,
				Name:   item.Name,
				Pallet: k,
				X0:     offsetX,
				Y0:     0,
				Z0:     cursor,
				X1:     offsetX + dims.L,
				Y1:     dims.W,
				Z1:     cursor + dims.H,
			})
			cursor += dims.H
		}
	}

	return placements
}
