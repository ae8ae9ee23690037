// Package write exports close approaches as CSV or JSON.
package write

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/timeutil"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// NEORecord is the nested object of a JSON export row.
type NEORecord struct {
	Designation string   `json:"designation"`
	Name        string   `json:"name"`
	DiameterKM  *float64 `json:"diameter_km"`
	Hazardous   bool     `json:"potentially_hazardous"`
}

// ApproachRecord is one JSON export row. Unknown numbers are null.
type ApproachRecord struct {
	DatetimeUTC string    `json:"datetime_utc"`
	DistanceAU  *float64  `json:"distance_au"`
	VelocityKMS *float64  `json:"velocity_km_s"`
	NEO         NEORecord `json:"neo"`
}

// NewApproachRecord flattens an approach for export. Unlinked approaches
// keep their designation reference and carry empty object fields.
func NewApproachRecord(ca *ontology.CloseApproach) ApproachRecord {
	rec := ApproachRecord{
		DatetimeUTC: timeutil.Format(ca.Time),
		DistanceAU:  finite(ca.Distance),
		VelocityKMS: finite(ca.Velocity),
		NEO:         NEORecord{Designation: ca.Designation},
	}
	if neo := ca.NEO; neo != nil {
		rec.NEO = NEORecord{
			Designation: neo.Designation,
			Name:        neo.NameOrEmpty(),
			DiameterKM:  finite(neo.Diameter),
			Hazardous:   neo.Hazardous,
		}
	}
	return rec
}

// CSVRow renders the record in CSVHeader order.
func (r ApproachRecord) CSVRow() []string {
	return []string{
		r.DatetimeUTC,
		formatFloat(r.DistanceAU),
		formatFloat(r.VelocityKMS),
		r.NEO.Designation,
		r.NEO.Name,
		formatFloat(r.NEO.DiameterKM),
		hazardFlag(r.NEO.Hazardous),
	}
}

func hazardFlag(hazardous bool) string {
	if hazardous {
		return "True"
	}
	return "False"
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatFloat(v *float64) string {
	if v == nil {
		return "nan"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV writes a header row and one row per approach.
func WriteCSV(w io.Writer, approaches iter.Seq[*ontology.CloseApproach]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	n := 0
	for ca := range approaches {
		if err := cw.Write(NewApproachRecord(ca).CSVRow()); err != nil {
			return n, fmt.Errorf("failed to write csv row: %w", err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("failed to flush csv: %w", err)
	}
	return n, nil
}

// WriteJSON writes a JSON array of ApproachRecord.
func WriteJSON(w io.Writer, approaches iter.Seq[*ontology.CloseApproach]) (int, error) {
	records := make([]ApproachRecord, 0)
	for ca := range approaches {
		records = append(records, NewApproachRecord(ca))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("failed to encode json: %w", err)
	}
	return len(records), nil
}

// WriteFile picks the format from the file extension (.csv or .json).
func WriteFile(path string, approaches iter.Seq[*ontology.CloseApproach]) (int, error) {
	var writeFn func(io.Writer, iter.Seq[*ontology.CloseApproach]) (int, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		writeFn = WriteCSV
	case ".json":
		writeFn = WriteJSON
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	n, err := writeFn(f, approaches)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return n, err
}
