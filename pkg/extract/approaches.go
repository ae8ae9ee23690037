package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/timeutil"
)

// Close approach data fields. Positions are the defaults used when the
// document carries no "fields" list.
const (
	FieldDesignation = "des"
	FieldCalendar    = "cd"
	FieldDistance    = "dist"
	FieldVelocity    = "v_rel"
)

var defaultFieldPositions = map[string]int{
	FieldDesignation: 0,
	FieldCalendar:    3,
	FieldDistance:    4,
	FieldVelocity:    7,
}

type cadDocument struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// ParseApproaches reads a close approach data document. Unparsable distance
// or velocity degrades to NaN. An empty designation or an unrecognized
// calendar date fails the whole parse.
func ParseApproaches(r io.Reader) ([]*ontology.CloseApproach, error) {
	var doc cadDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode close approach document: %w", err)
	}

	positions, err := fieldPositions(doc.Fields)
	if err != nil {
		return nil, err
	}

	approaches := make([]*ontology.CloseApproach, 0, len(doc.Data))
	for i, row := range doc.Data {
		cell := func(field string) string {
			return cellString(row, positions[field])
		}

		t, err := timeutil.ParseCalendar(cell(FieldCalendar))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		ca, err := ontology.NewCloseApproach(
			cell(FieldDesignation),
			t,
			parseFloat(cell(FieldDistance)),
			parseFloat(cell(FieldVelocity)),
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		approaches = append(approaches, ca)
	}
	return approaches, nil
}

func fieldPositions(fields []string) (map[string]int, error) {
	if len(fields) == 0 {
		return defaultFieldPositions, nil
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}
	positions := make(map[string]int, len(defaultFieldPositions))
	for name := range defaultFieldPositions {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing required field %q", name)
		}
		positions[name] = i
	}
	return positions, nil
}

// cellString coerces a decoded JSON cell to its string form. Nulls and
// missing cells are "".
func cellString(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
