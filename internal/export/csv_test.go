package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/loadwise/palletizer/internal/pallet"
)

func TestParseItems(t *testing.T) {
	t.Parallel()

	// Shuffled columns, mixed-case header, optional columns present.
	input := strings.Join([]string{
		"Mass,NAME,h,w,l,fragile,rotatable,priority,destination",
		"12.5,crate,0.2,0.4,0.5,yes,0,3,Salvador",
		"3,box,0.1,0.2,0.3,,,,",
	}, "\n")

	items, err := ParseItems(strings.NewReader(input), pallet.DefaultUnits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Name != "crate" || first.Length != 0.5 || first.Width != 0.4 || first.Height != 0.2 {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if !first.Fragile || first.Rotatable {
		t.Fatalf("expected fragile, non-rotatable, got fragile=%v rotatable=%v", first.Fragile, first.Rotatable)
	}
	if first.Priority != 3 || first.Destination != "Salvador" {
		t.Fatalf("unexpected priority/destination: %d %q", first.Priority, first.Destination)
	}

	// Blank optional columns fall back to their defaults.
	second := items[1]
	if second.Fragile || !second.Rotatable || second.Priority != 1 || second.Destination != "" {
		t.Fatalf("unexpected defaults: %+v", second)
	}
}

func TestParseItemsMissingColumn(t *testing.T) {
	t.Parallel()

	input := "name,l,w,h\ncrate,0.5,0.4,0.2\n"

	_, err := ParseItems(strings.NewReader(input), pallet.DefaultUnits())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParseItemsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "BadNumber",
			input: "name,l,w,h,mass\ncrate,abc,0.4,0.2,1\n",
		},
		{
			name:  "BadFlag",
			input: "name,l,w,h,mass,fragile\ncrate,0.5,0.4,0.2,1,maybe\n",
		},
		{
			name:  "BadPriority",
			input: "name,l,w,h,mass,priority\ncrate,0.5,0.4,0.2,1,high\n",
		},
		{
			name:  "InvalidDimensions",
			input: "name,l,w,h,mass\ncrate,0,0.4,0.2,1\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseItems(strings.NewReader(tc.input), pallet.DefaultUnits()); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestWriteAllocationCSV(t *testing.T) {
	t.Parallel()

	units := pallet.DefaultUnits()
	item, err := pallet.NewItem(3, pallet.ItemSpec{
		Name: "crate", Length: 0.5, Width: 0.4, Height: 0.2,
		MassKg: 12.5, Priority: 1, Destination: "Salvador",
	}, units)
	if err != nil {
		t.Fatalf("building item: %v", err)
	}

	rec := Record{
		Allocation: []AllocationEntry{
			{ItemID: 3, PalletIndex: 1, OrientationIndex: 2, Item: item},
		},
	}

	var buf bytes.Buffer
	if err := WriteAllocationCSV(&buf, rec, units); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "item_id,item_name,pallet,orientation,volume_m3,mass_kg,destination" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	// Pallet numbers are one-based in the export.
	if lines[1] != "3,crate,2,2,0.040000,12.500,Salvador" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}
