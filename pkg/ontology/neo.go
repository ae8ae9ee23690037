package ontology

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrEmptyDesignation = errors.New("designation must not be empty")

// NearEarthObject is a near-Earth object identified by its primary
// designation. Approaches stays empty until a database links it.
type NearEarthObject struct {
	Designation string           `json:"designation" db:"designation"`
	Name        *string          `json:"name,omitempty" db:"name"`
	Diameter    float64          `json:"diameter_km" db:"diameter_km"`
	Hazardous   bool             `json:"potentially_hazardous" db:"hazardous"`
	Approaches  []*CloseApproach `json:"-"`
}

// NewNearEarthObject validates and normalizes an object. Surrounding
// whitespace is stripped, an empty name becomes no name.
func NewNearEarthObject(designation, name string, diameter float64, hazardous bool) (*NearEarthObject, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, ErrEmptyDesignation
	}
	neo := &NearEarthObject{
		Designation: designation,
		Diameter:    diameter,
		Hazardous:   hazardous,
	}
	if name = strings.TrimSpace(name); name != "" {
		neo.Name = &name
	}
	return neo, nil
}

// NameOrEmpty returns the IAU name, or "" for unnamed objects.
func (n *NearEarthObject) NameOrEmpty() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// HasDiameter reports whether the diameter is known.
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

// FullName is "433 (Eros)" for named objects and the bare designation
// otherwise.
func (n *NearEarthObject) FullName() string {
	if n.Name != nil {
		return fmt.Sprintf("%s (%s)", n.Designation, *n.Name)
	}
	return n.Designation
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	diameter := "an unknown diameter"
	if n.HasDiameter() {
		diameter = fmt.Sprintf("a diameter of %.3f km", n.Diameter)
	}
	return fmt.Sprintf("NEO %s has %s and %s potentially hazardous.", n.FullName(), diameter, hazard)
}
