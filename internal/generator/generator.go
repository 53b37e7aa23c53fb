// Package generator produces reproducible random item batches for
// testing and demonstration. Output is a pure function of the seed,
// category, and count; the optimization core never depends on it.
package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/loadwise/palletizer/internal/pallet"
)

// Category names with distinct density, size, fragility, and
// rotatability profiles.
const (
	CategoryStandard    = "standard"
	CategoryElectronics = "electronics"
	CategoryBeverages   = "beverages"
	CategoryTextile     = "textile"
	CategoryPharma      = "pharma"
)

type span struct {
	lo, hi float64
}

type profile struct {
	density       span
	length        span
	width         span
	height        span
	fragileProb   float64
	rotatableProb float64
}

var profiles = map[string]profile{
	CategoryStandard: {
		density: span{200, 500},
		length:  span{0.4, 0.8}, width: span{0.3, 0.6}, height: span{0.3, 0.6},
		fragileProb: 0.3, rotatableProb: 0.5,
	},
	CategoryElectronics: {
		density: span{300, 800},
		length:  span{0.2, 0.5}, width: span{0.2, 0.4}, height: span{0.1, 0.3},
		fragileProb: 0.7, rotatableProb: 0.5,
	},
	CategoryBeverages: {
		density: span{800, 1200},
		length:  span{0.3, 0.4}, width: span{0.2, 0.3}, height: span{0.2, 0.3},
		fragileProb: 0.3, rotatableProb: 0.2,
	},
	CategoryTextile: {
		density: span{100, 300},
		length:  span{0.5, 1.0}, width: span{0.4, 0.8}, height: span{0.2, 0.5},
		fragileProb: 0.3, rotatableProb: 0.9,
	},
	CategoryPharma: {
		density: span{200, 600},
		length:  span{0.1, 0.3}, width: span{0.1, 0.2}, height: span{0.05, 0.15},
		fragileProb: 0.8, rotatableProb: 0.5,
	},
}

var destinations = []string{"São Paulo", "Rio de Janeiro", "Belo Horizonte", "Salvador"}

// Categories lists the supported category names.
func Categories() []string {
	return []string{
		CategoryStandard,
		CategoryElectronics,
		CategoryBeverages,
		CategoryTextile,
		CategoryPharma,
	}
}

// Generate builds a batch of count items for the named category.
// Unknown categories fall back to the standard profile. Identical
// (seed, category, count) inputs yield identical batches.
func Generate(seed int64, category string, count int, units pallet.Units) ([]pallet.Item, error) {
	p, ok := profiles[category]
	if !ok {
		p = profiles[CategoryStandard]
	}

	rng := rand.New(rand.NewSource(seed))
	specs := make([]pallet.ItemSpec, 0, count)
	for i := 0; i < count; i++ {
		l := round2(uniform(rng, p.length))
		w := round2(uniform(rng, p.width))
		h := round2(uniform(rng, p.height))
		density := uniform(rng, p.density)
		massKg := l * w * h * density

		specs = append(specs, pallet.ItemSpec{
			Name:        fmt.Sprintf("Item_%d", i+1),
			Category:    category,
			Length:      l,
			Width:       w,
			Height:      h,
			MassKg:      massKg,
			Fragile:     rng.Float64() < p.fragileProb,
			Rotatable:   rng.Float64() < p.rotatableProb,
			Priority:    1 + rng.Intn(5),
			Destination: destinations[rng.Intn(len(destinations))],
		})
	}

	return pallet.NewBatch(specs, units)
}

func uniform(rng *rand.Rand, s span) float64 {
	return s.lo + rng.Float64()*(s.hi-s.lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
