package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loadwise/palletizer/internal/pallet"
)

// ErrMissingColumn is returned when a required column is absent from an
// item file header.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"name", "l", "w", "h", "mass"}

// ParseItems reads a tabular item file. The first row is a header with
// columns name, l, w, h, mass, fragile, rotatable, priority, destination
// (matched case-insensitively, any order). The fragile, rotatable,
// priority, and destination columns are optional and default to false,
// true, 1, and empty respectively.
func ParseItems(r io.Reader, units pallet.Units) ([]pallet.Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var specs []pallet.ItemSpec
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		spec, err := rowToSpec(row, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		specs = append(specs, spec)
	}

	items, err := pallet.NewBatch(specs, units)
	if err != nil {
		return nil, fmt.Errorf("build items: %w", err)
	}
	return items, nil
}

func rowToSpec(row []string, index map[string]int) (pallet.ItemSpec, error) {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	spec := pallet.ItemSpec{Rotatable: true, Priority: 1}
	if v, ok := field("name"); ok {
		spec.Name = v
	}
	if v, ok := field("category"); ok {
		spec.Category = v
	}
	if v, ok := field("destination"); ok {
		spec.Destination = v
	}

	var err error
	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{"l", &spec.Length},
		{"w", &spec.Width},
		{"h", &spec.Height},
		{"mass", &spec.MassKg},
	} {
		raw, _ := field(col.name)
		*col.dst, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return pallet.ItemSpec{}, fmt.Errorf("column %q: invalid number %q", col.name, raw)
		}
	}

	if raw, ok := field("fragile"); ok && raw != "" {
		spec.Fragile, err = parseFlag(raw)
		if err != nil {
			return pallet.ItemSpec{}, fmt.Errorf("column \"fragile\": %w", err)
		}
	}
	if raw, ok := field("rotatable"); ok && raw != "" {
		spec.Rotatable, err = parseFlag(raw)
		if err != nil {
			return pallet.ItemSpec{}, fmt.Errorf("column \"rotatable\": %w", err)
		}
	}
	if raw, ok := field("priority"); ok && raw != "" {
		spec.Priority, err = strconv.Atoi(raw)
		if err != nil {
			return pallet.ItemSpec{}, fmt.Errorf("column \"priority\": invalid integer %q", raw)
		}
	}

	return spec, nil
}

// parseFlag accepts 0/1 as well as the usual boolean spellings.
func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag %q", raw)
	}
}

// WriteAllocationCSV writes one row per loaded item with human-readable
// volumes and masses. Pallet numbers are one-based for operators.
func WriteAllocationCSV(w io.Writer, rec Record, units pallet.Units) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"item_id", "item_name", "pallet", "orientation", "volume_m3", "mass_kg", "destination"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range rec.Allocation {
		row := []string{
			strconv.Itoa(entry.ItemID),
			entry.Item.Name,
			strconv.Itoa(entry.PalletIndex + 1),
			strconv.Itoa(entry.OrientationIndex),
			strconv.FormatFloat(units.CubicMetres(entry.Item.Volume), 'f', 6, 64),
			strconv.FormatFloat(units.Kilograms(entry.Item.Mass), 'f', 3, 64),
			entry.Item.Destination,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
