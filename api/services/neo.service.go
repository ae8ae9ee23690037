package services

import (
	"fmt"

	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/metrics"
	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/shared"
	"neo-overwatch/pkg/write"
)

// NEOView is the API representation of an object.
type NEOView struct {
	Designation string                 `json:"designation"`
	Name        *string                `json:"name"`
	FullName    string                 `json:"full_name"`
	DiameterKM  *float64               `json:"diameter_km"`
	Hazardous   bool                   `json:"potentially_hazardous"`
	Approaches  int                    `json:"approach_count"`
	Details     []write.ApproachRecord `json:"approaches,omitempty"`
}

func NewNEOView(neo *ontology.NearEarthObject, withApproaches bool) *NEOView {
	view := &NEOView{
		Designation: neo.Designation,
		Name:        neo.Name,
		FullName:    neo.FullName(),
		Hazardous:   neo.Hazardous,
		Approaches:  len(neo.Approaches),
	}
	if neo.HasDiameter() {
		d := neo.Diameter
		view.DiameterKM = &d
	}
	if withApproaches {
		view.Details = make([]write.ApproachRecord, 0, len(neo.Approaches))
		for _, ca := range neo.Approaches {
			view.Details = append(view.Details, write.NewApproachRecord(ca))
		}
	}
	return view
}

type NEOService struct {
	db  *neodb.Database
	log *logger.Logger
}

func NewNEOService(db *neodb.Database, log *logger.Logger) *NEOService {
	return &NEOService{
		db:  db,
		log: logger.OrNop(log),
	}
}

// Lookup resolves a designation, or a name when no designation is given.
func (s *NEOService) Lookup(req *shared.LookupRequest) (*ontology.NearEarthObject, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: designation or name is required", ErrInvalidRequest)
	}

	var (
		neo   *ontology.NearEarthObject
		found bool
		key   string
	)
	if req.Designation != "" {
		key = "designation"
		neo, found = s.db.NEOByDesignation(req.Designation)
	} else {
		key = "name"
		neo, found = s.db.NEOByName(req.Name)
	}
	metrics.ObserveLookup(key, found)

	if !found {
		s.log.Debug("lookup missed", "key", key, "designation", req.Designation, "name", req.Name)
		return nil, ErrNotFound
	}
	return neo, nil
}

func (s *NEOService) Stats() neodb.Stats {
	return s.db.Stats()
}
