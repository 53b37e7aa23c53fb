package pallet

import "math"

// Units holds the fixed-point scaling factors applied when converting
// real-world volumes and masses into the integer units used throughout
// the optimization model. Capacity comparisons are performed on the
// scaled integers so repeated summation cannot accumulate floating-point
// error.
type Units struct {
	// VolumeScale is the number of integer volume units per cubic metre.
	VolumeScale int64
	// MassScale is the number of integer mass units per kilogram.
	MassScale int64
}

// DefaultUnits scales volumes to micro cubic metres and masses to grams.
func DefaultUnits() Units {
	return Units{
		VolumeScale: 1_000_000,
		MassScale:   1_000,
	}
}

// VolumeUnits converts dimensions in metres to integer volume units.
func (u Units) VolumeUnits(l, w, h float64) int64 {
	return u.ScaleVolume(l * w * h)
}

// ScaleVolume converts a volume in cubic metres to integer volume units.
func (u Units) ScaleVolume(m3 float64) int64 {
	return int64(math.Round(m3 * float64(u.VolumeScale)))
}

// MassUnits converts a mass in kilograms to integer mass units.
func (u Units) MassUnits(kg float64) int64 {
	return int64(math.Round(kg * float64(u.MassScale)))
}

// CubicMetres converts integer volume units back to cubic metres.
func (u Units) CubicMetres(units int64) float64 {
	return float64(units) / float64(u.VolumeScale)
}

// Kilograms converts integer mass units back to kilograms.
func (u Units) Kilograms(units int64) float64 {
	return float64(units) / float64(u.MassScale)
}
