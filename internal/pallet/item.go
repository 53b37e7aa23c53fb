package pallet

import "errors"

// OrientationCount is the number of axis permutations of an item's
// dimensions. Orientation index 0 always denotes the original
// (length, width, height) order.
const OrientationCount = 6

var (
	// ErrInvalidDimensions is returned when an item has a non-positive dimension or mass.
	ErrInvalidDimensions = errors.New("item dimensions and mass must be positive")
	// ErrInvalidPriority is returned when an item priority falls outside [1,5].
	ErrInvalidPriority = errors.New("item priority must be between 1 and 5")
)

// ItemSpec describes an item in real-world units, as supplied by a
// caller, a tabular file, or the test-data generator.
type ItemSpec struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Length      float64 `json:"l"`
	Width       float64 `json:"w"`
	Height      float64 `json:"h"`
	MassKg      float64 `json:"mass"`
	Fragile     bool    `json:"fragile"`
	Rotatable   bool    `json:"rotatable"`
	Priority    int     `json:"priority"`
	Destination string  `json:"destination"`
}

// Item is the immutable model entity consumed by the optimizer. Volume
// and Mass are derived from the ItemSpec through the supplied Units at
// construction time and are never mutated afterwards.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Length      float64 `json:"l"`
	Width       float64 `json:"w"`
	Height      float64 `json:"h"`
	Volume      int64   `json:"volume"`
	Mass        int64   `json:"mass"`
	Fragile     bool    `json:"fragile"`
	Rotatable   bool    `json:"rotatable"`
	Priority    int     `json:"priority"`
	Destination string  `json:"destination"`
}

// NewItem derives an Item from a spec, scaling volume and mass into
// integer units. It rejects non-positive dimensions or mass and
// priorities outside [1,5].
func NewItem(id int, spec ItemSpec, units Units) (Item, error) {
	if spec.Length <= 0 || spec.Width <= 0 || spec.Height <= 0 || spec.MassKg <= 0 {
		return Item{}, ErrInvalidDimensions
	}
	if spec.Priority < 1 || spec.Priority > 5 {
		return Item{}, ErrInvalidPriority
	}

	return Item{
		ID:          id,
		Name:        spec.Name,
		Category:    spec.Category,
		Length:      spec.Length,
		Width:       spec.Width,
		Height:      spec.Height,
		Volume:      units.VolumeUnits(spec.Length, spec.Width, spec.Height),
		Mass:        units.MassUnits(spec.MassKg),
		Fragile:     spec.Fragile,
		Rotatable:   spec.Rotatable,
		Priority:    spec.Priority,
		Destination: spec.Destination,
	}, nil
}

// NewBatch derives a batch of items from specs, assigning sequential IDs
// starting at zero.
func NewBatch(specs []ItemSpec, units Units) ([]Item, error) {
	items := make([]Item, 0, len(specs))
	for i, spec := range specs {
		item, err := NewItem(i, spec, units)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Dimensions is an ordered (length, width, height) triple in metres.
type Dimensions struct {
	L, W, H float64
}

// Orientations returns the six axis permutations of the item's
// dimensions. Index 0 is the original order; the sequence is fixed so
// orientation indices are stable across the model, the extractor, and
// the geometry projector.
func (it Item) Orientations() [OrientationCount]Dimensions {
	l, w, h := it.Length, it.Width, it.Height
	return [OrientationCount]Dimensions{
		{l, w, h},
		{l, h, w},
		{w, l, h},
		{w, h, l},
		{h, l, w},
		{h, w, l},
	}
}
