package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/loadwise/palletizer/internal/pallet"
)

// WriteSAPDelimited writes the allocation as semicolon-delimited rows in
// the material-document column layout commonly ingested by SAP loaders.
func WriteSAPDelimited(w io.Writer, rec Record, units pallet.Units) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write([]string{"MATNR", "LGORT", "MENGE", "MEINS", "VKORG", "WERKS", "ROUTE", "VOLUM", "BRGEW"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range rec.Allocation {
		route := entry.Item.Destination
		if route == "" {
			route = "DEFAULT"
		}
		row := []string{
			fmt.Sprintf("MAT%06d", entry.ItemID),
			fmt.Sprintf("PAL%d", entry.PalletIndex+1),
			"1",
			"PCE",
			"1000",
			"1000",
			route,
			strconv.FormatFloat(units.CubicMetres(entry.Item.Volume), 'f', 6, 64),
			strconv.FormatFloat(units.Kilograms(entry.Item.Mass), 'f', 3, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// OracleLine is one shipment line of an Oracle WMS document.
type OracleLine struct {
	LineID      int     `json:"line_id"`
	ItemCode    string  `json:"item_code"`
	PalletID    string  `json:"pallet_id"`
	Quantity    int     `json:"quantity"`
	VolumeM3    float64 `json:"volume_m3"`
	WeightKg    float64 `json:"weight_kg"`
	Destination string  `json:"destination"`
	Fragile     string  `json:"fragile_flag"`
	Rotatable   string  `json:"rotatable_flag"`
}

// OracleHeader summarises the shipment.
type OracleHeader struct {
	ShipmentID   string    `json:"shipment_id"`
	CreationDate time.Time `json:"creation_date"`
	TotalPallets int       `json:"total_pallets"`
	TotalVolume  float64   `json:"total_volume"`
	TotalWeight  float64   `json:"total_weight"`
}

// OracleShipment is the Oracle-WMS-style shipment document built from a
// result record.
type OracleShipment struct {
	Header OracleHeader `json:"shipment_header"`
	Lines  []OracleLine `json:"shipment_lines"`
}

// BuildOracleShipment converts a record into a shipment document.
func BuildOracleShipment(rec Record, units pallet.Units) OracleShipment {
	doc := OracleShipment{
		Header: OracleHeader{
			ShipmentID:   "SHIP" + rec.CreatedAt.Format("20060102150405"),
			CreationDate: rec.CreatedAt,
			TotalPallets: rec.Metrics.UsedPallets,
			TotalVolume:  rec.Metrics.VolumeLoadedM3,
			TotalWeight:  rec.Metrics.MassLoadedKg,
		},
		Lines: make([]OracleLine, 0, len(rec.Allocation)),
	}

	for _, entry := range rec.Allocation {
		destination := entry.Item.Destination
		if destination == "" {
			destination = "DEFAULT"
		}
		doc.Lines = append(doc.Lines, OracleLine{
			LineID:      len(doc.Lines) + 1,
			ItemCode:    fmt.Sprintf("ITEM%06d", entry.ItemID),
			PalletID:    fmt.Sprintf("PLT%d", entry.PalletIndex+1),
			Quantity:    1,
			VolumeM3:    units.CubicMetres(entry.Item.Volume),
			WeightKg:    units.Kilograms(entry.Item.Mass),
			Destination: destination,
			Fragile:     flag(entry.Item.Fragile),
			Rotatable:   flag(entry.Item.Rotatable),
		})
	}

	return doc
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
