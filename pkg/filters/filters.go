package filters

import (
	"time"

	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/timeutil"
)

// compare builds a predicate that is true when get reports the attribute as
// available and op(attribute, bound) holds. Object attributes are
// unavailable on unlinked approaches.
func compare[T any](get func(*ontology.CloseApproach) (T, bool), op func(value, bound T) bool, bound T) neodb.Predicate {
	return func(ca *ontology.CloseApproach) bool {
		v, ok := get(ca)
		return ok && op(v, bound)
	}
}

func approachDate(ca *ontology.CloseApproach) (time.Time, bool) {
	return timeutil.Date(ca.Time), true
}

func approachDistance(ca *ontology.CloseApproach) (float64, bool) {
	return ca.Distance, true
}

func approachVelocity(ca *ontology.CloseApproach) (float64, bool) {
	return ca.Velocity, true
}

func approachDesignation(ca *ontology.CloseApproach) (string, bool) {
	return ca.Designation, true
}

func neoDiameter(ca *ontology.CloseApproach) (float64, bool) {
	if ca.NEO == nil {
		return 0, false
	}
	return ca.NEO.Diameter, true
}

func neoHazardous(ca *ontology.CloseApproach) (bool, bool) {
	if ca.NEO == nil {
		return false, false
	}
	return ca.NEO.Hazardous, true
}

func neoName(ca *ontology.CloseApproach) (string, bool) {
	if ca.NEO == nil || ca.NEO.Name == nil {
		return "", false
	}
	return *ca.NEO.Name, true
}

// NaN fails every float comparison, so unknown values never satisfy a bound.
func gte(v, bound float64) bool { return v >= bound }
func lte(v, bound float64) bool { return v <= bound }

func sameDay(v, bound time.Time) bool   { return v.Equal(bound) }
func notBefore(v, bound time.Time) bool { return !v.Before(bound) }
func notAfter(v, bound time.Time) bool  { return !v.After(bound) }

func eq[T comparable](v, bound T) bool { return v == bound }

// Create returns one predicate per set option, in a fixed order. Options
// are expected to be validated already.
func Create(opts Options) []neodb.Predicate {
	var preds []neodb.Predicate

	if opts.Date != nil {
		preds = append(preds, compare(approachDate, sameDay, timeutil.Date(*opts.Date)))
	}
	if opts.StartDate != nil {
		preds = append(preds, compare(approachDate, notBefore, timeutil.Date(*opts.StartDate)))
	}
	if opts.EndDate != nil {
		preds = append(preds, compare(approachDate, notAfter, timeutil.Date(*opts.EndDate)))
	}
	if opts.DistanceMin != nil {
		preds = append(preds, compare(approachDistance, gte, *opts.DistanceMin))
	}
	if opts.DistanceMax != nil {
		preds = append(preds, compare(approachDistance, lte, *opts.DistanceMax))
	}
	if opts.VelocityMin != nil {
		preds = append(preds, compare(approachVelocity, gte, *opts.VelocityMin))
	}
	if opts.VelocityMax != nil {
		preds = append(preds, compare(approachVelocity, lte, *opts.VelocityMax))
	}
	if opts.DiameterMin != nil {
		preds = append(preds, compare(neoDiameter, gte, *opts.DiameterMin))
	}
	if opts.DiameterMax != nil {
		preds = append(preds, compare(neoDiameter, lte, *opts.DiameterMax))
	}
	if opts.Hazardous != nil {
		preds = append(preds, compare(neoHazardous, eq[bool], *opts.Hazardous))
	}
	if opts.Designation != nil {
		preds = append(preds, compare(approachDesignation, eq[string], *opts.Designation))
	}
	if opts.Name != nil {
		preds = append(preds, compare(neoName, eq[string], *opts.Name))
	}

	return preds
}
