// Package neodb links near-Earth objects to their close approaches and
// answers lookups and filtered queries over the linked data set.
//
// A Database is built once from two unlinked collections and is read-only
// afterwards, so any number of goroutines may read it concurrently. Loading
// new data means building a new Database.
package neodb

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"neo-overwatch/pkg/ontology"
)

var (
	ErrNilRecord            = errors.New("nil record")
	ErrDuplicateRecord      = errors.New("record given more than once")
	ErrDuplicateDesignation = errors.New("duplicate designation")
	ErrAlreadyLinked        = errors.New("record already linked")
)

// Database holds the object and approach collections in load order plus the
// indexes derived from them.
type Database struct {
	neos       []*ontology.NearEarthObject
	approaches []*ontology.CloseApproach

	byDesignation           map[string]*ontology.NearEarthObject
	byName                  map[string]*ontology.NearEarthObject
	approachesByDesignation map[string][]*ontology.CloseApproach

	shadowedNames int
}

// Stats summarizes a built database.
type Stats struct {
	NEOs          int `json:"neos"`
	NamedNEOs     int `json:"named_neos"`
	ShadowedNames int `json:"shadowed_names"`
	Approaches    int `json:"approaches"`
	Linked        int `json:"linked"`
	Orphans       int `json:"orphans"`
}

// New indexes the objects and approaches and links them in both directions.
//
// Objects must arrive with empty approach lists and approaches with a nil
// NEO. Input need not be sorted: approaches are grouped by designation with
// a hash map and each group keeps input order. When two objects share a
// name, the later one in input order owns the name. Approaches whose
// designation matches no object stay unlinked but remain part of the
// approach collection.
//
// All records are validated before anything is linked, so a returned error
// leaves the inputs untouched. Passing the same record twice is an error.
func New(neos []*ontology.NearEarthObject, approaches []*ontology.CloseApproach) (*Database, error) {
	db := &Database{
		neos:                    slices.Clone(neos),
		approaches:              slices.Clone(approaches),
		byDesignation:           make(map[string]*ontology.NearEarthObject, len(neos)),
		byName:                  make(map[string]*ontology.NearEarthObject, len(neos)),
		approachesByDesignation: make(map[string][]*ontology.CloseApproach),
	}

	if err := db.indexNEOs(); err != nil {
		return nil, err
	}
	if err := db.groupApproaches(); err != nil {
		return nil, err
	}
	db.link()

	return db, nil
}

func (db *Database) indexNEOs() error {
	seen := make(map[*ontology.NearEarthObject]struct{}, len(db.neos))
	for i, neo := range db.neos {
		if neo == nil {
			return fmt.Errorf("neo %d: %w", i, ErrNilRecord)
		}
		if _, dup := seen[neo]; dup {
			return fmt.Errorf("neo %d (%s): %w", i, neo.Designation, ErrDuplicateRecord)
		}
		seen[neo] = struct{}{}
		if neo.Designation == "" {
			return fmt.Errorf("neo %d: %w", i, ontology.ErrEmptyDesignation)
		}
		if len(neo.Approaches) > 0 {
			return fmt.Errorf("neo %q: %w", neo.Designation, ErrAlreadyLinked)
		}
		if _, exists := db.byDesignation[neo.Designation]; exists {
			return fmt.Errorf("neo %q: %w", neo.Designation, ErrDuplicateDesignation)
		}
		db.byDesignation[neo.Designation] = neo

		if neo.Name == nil || *neo.Name == "" {
			continue
		}
		if _, exists := db.byName[*neo.Name]; exists {
			db.shadowedNames++
		}
		db.byName[*neo.Name] = neo
	}
	return nil
}

func (db *Database) groupApproaches() error {
	seen := make(map[*ontology.CloseApproach]struct{}, len(db.approaches))
	for i, ca := range db.approaches {
		if ca == nil {
			return fmt.Errorf("approach %d: %w", i, ErrNilRecord)
		}
		if _, dup := seen[ca]; dup {
			return fmt.Errorf("approach %d (%s): %w", i, ca.Designation, ErrDuplicateRecord)
		}
		seen[ca] = struct{}{}
		if ca.Designation == "" {
			return fmt.Errorf("approach %d: %w", i, ontology.ErrEmptyDesignation)
		}
		if ca.NEO != nil {
			return fmt.Errorf("approach %d (%s): %w", i, ca.Designation, ErrAlreadyLinked)
		}
		db.approachesByDesignation[ca.Designation] = append(db.approachesByDesignation[ca.Designation], ca)
	}
	for des, group := range db.approachesByDesignation {
		db.approachesByDesignation[des] = slices.Clip(group)
	}
	return nil
}

func (db *Database) link() {
	for _, neo := range db.neos {
		group, ok := db.approachesByDesignation[neo.Designation]
		if !ok {
			neo.Approaches = []*ontology.CloseApproach{}
			continue
		}
		neo.Approaches = group
		for _, ca := range group {
			ca.NEO = neo
		}
	}
}

// NEOByDesignation returns the object with exactly this designation.
func (db *Database) NEOByDesignation(designation string) (*ontology.NearEarthObject, bool) {
	neo, ok := db.byDesignation[designation]
	return neo, ok
}

// NEOByName returns the object with exactly this name. The empty name never
// matches.
func (db *Database) NEOByName(name string) (*ontology.NearEarthObject, bool) {
	if name == "" {
		return nil, false
	}
	neo, ok := db.byName[name]
	return neo, ok
}

// ApproachesByDesignation returns every approach that references the
// designation, linked or not, in load order.
func (db *Database) ApproachesByDesignation(designation string) []*ontology.CloseApproach {
	return slices.Clone(db.approachesByDesignation[designation])
}

// NEOs returns the objects in load order.
func (db *Database) NEOs() []*ontology.NearEarthObject {
	return slices.Clone(db.neos)
}

// Approaches returns the approaches in load order.
func (db *Database) Approaches() []*ontology.CloseApproach {
	return slices.Clone(db.approaches)
}

// Orphans yields the approaches that did not resolve to an object.
func (db *Database) Orphans() iter.Seq[*ontology.CloseApproach] {
	return db.Query(func(ca *ontology.CloseApproach) bool { return ca.NEO == nil })
}

func (db *Database) Stats() Stats {
	s := Stats{
		NEOs:          len(db.neos),
		NamedNEOs:     len(db.byName),
		ShadowedNames: db.shadowedNames,
		Approaches:    len(db.approaches),
	}
	for _, ca := range db.approaches {
		if ca.NEO != nil {
			s.Linked++
		}
	}
	s.Orphans = s.Approaches - s.Linked
	return s
}
