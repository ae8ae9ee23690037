package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"neo-overwatch/pkg/ontology"
)

// NEO CSV columns.
const (
	ColumnDesignation = "pdes"
	ColumnName        = "name"
	ColumnDiameter    = "diameter"
	ColumnHazardous   = "pha"
)

// HazardousFlag is the only "pha" value that marks an object hazardous.
const HazardousFlag = "Y"

// ParseNEOs reads NEO rows from CSV with a header line. Only the pdes column
// is required. Rows keep file order. A row with an empty designation fails
// the whole parse.
func ParseNEOs(r io.Reader) ([]*ontology.NearEarthObject, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := columns[ColumnDesignation]; !ok {
		return nil, fmt.Errorf("missing required column %q", ColumnDesignation)
	}

	field := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var neos []*ontology.NearEarthObject
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		neo, err := ontology.NewNearEarthObject(
			field(record, ColumnDesignation),
			field(record, ColumnName),
			parseFloat(field(record, ColumnDiameter)),
			strings.TrimSpace(field(record, ColumnHazardous)) == HazardousFlag,
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		neos = append(neos, neo)
	}
	return neos, nil
}
