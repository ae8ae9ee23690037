// Package extract turns the NEO CSV and close approach JSON data files into
// unlinked domain records.
package extract

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"neo-overwatch/pkg/ontology"
)

// Source produces the two unlinked collections a database is built from.
type Source interface {
	LoadNEOs(ctx context.Context) ([]*ontology.NearEarthObject, error)
	LoadApproaches(ctx context.Context) ([]*ontology.CloseApproach, error)
}

// FileSource reads the NEO CSV file and the close approach JSON file at
// explicit paths.
type FileSource struct {
	NEOPath string
	CADPath string
}

func NewFileSource(neoPath, cadPath string) *FileSource {
	return &FileSource{NEOPath: neoPath, CADPath: cadPath}
}

func (s *FileSource) LoadNEOs(ctx context.Context) ([]*ontology.NearEarthObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.NEOPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open neo file: %w", err)
	}
	defer f.Close()

	neos, err := ParseNEOs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.NEOPath, err)
	}
	return neos, nil
}

func (s *FileSource) LoadApproaches(ctx context.Context) ([]*ontology.CloseApproach, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.CADPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open close approach file: %w", err)
	}
	defer f.Close()

	approaches, err := ParseApproaches(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.CADPath, err)
	}
	return approaches, nil
}

// parseFloat degrades anything unparsable, including "", to NaN.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
