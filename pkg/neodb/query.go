package neodb

import (
	"iter"

	"neo-overwatch/pkg/ontology"
)

// Predicate decides whether an approach belongs in a query result.
type Predicate func(*ontology.CloseApproach) bool

// Query lazily yields, in load order, every approach for which all predicates
// return true. With no predicates it yields the whole collection. Nil
// predicates are skipped. Evaluation stops at the first false predicate. The
// returned sequence can be ranged over any number of times.
func (db *Database) Query(preds ...Predicate) iter.Seq[*ontology.CloseApproach] {
	active := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	return func(yield func(*ontology.CloseApproach) bool) {
		for _, ca := range db.approaches {
			if !matchAll(ca, active) {
				continue
			}
			if !yield(ca) {
				return
			}
		}
	}
}

func matchAll(ca *ontology.CloseApproach, preds []Predicate) bool {
	for _, p := range preds {
		if !p(ca) {
			return false
		}
	}
	return true
}

// Limit yields at most n items of seq. n <= 0 means no limit.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		count := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}
