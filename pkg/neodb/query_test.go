package neodb

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo-overwatch/pkg/ontology"
)

func TestQueryNoPredicatesYieldsStoredOrder(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	got := slices.Collect(db.Query())
	require.Len(t, got, len(approaches))
	for i := range approaches {
		assert.Same(t, approaches[i], got[i])
	}
}

func TestQueryAndComposition(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	near := func(ca *ontology.CloseApproach) bool { return ca.Distance < 0.2 }
	slow := func(ca *ontology.CloseApproach) bool { return ca.Velocity < 10 }

	both := slices.Collect(db.Query(near, slow))
	require.NotEmpty(t, both)
	for _, ca := range both {
		assert.True(t, near(ca))
		assert.True(t, slow(ca))
	}

	onlyNear := slices.Collect(db.Query(near))
	onlySlow := slices.Collect(db.Query(slow))
	for _, ca := range both {
		assert.Contains(t, onlyNear, ca)
		assert.Contains(t, onlySlow, ca)
	}
	assert.Equal(t, []*ontology.CloseApproach{approaches[0], approaches[5]}, both)
}

func TestQueryVisitsOrphans(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	got := slices.Collect(db.Query(func(ca *ontology.CloseApproach) bool { return ca.Velocity == 12.0 }))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].NEO)
}

func TestQueryShortCircuits(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	calls := 0
	never := func(*ontology.CloseApproach) bool { return false }
	counting := func(*ontology.CloseApproach) bool { calls++; return true }

	assert.Empty(t, slices.Collect(db.Query(never, counting)))
	assert.Equal(t, 0, calls)
}

func TestQueryIsIdempotentAndRestartable(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	hazardous := func(ca *ontology.CloseApproach) bool { return ca.NEO != nil && ca.NEO.Hazardous }
	seq := db.Query(hazardous)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	third := slices.Collect(db.Query(hazardous))
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Len(t, first, 3)
}

func TestQuerySkipsNilPredicates(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	assert.Len(t, slices.Collect(db.Query(nil, nil)), len(approaches))
}

func TestQueryPredicatePanicPropagates(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	// Dereferences the NEO without guarding the orphan case.
	unguarded := func(ca *ontology.CloseApproach) bool { return ca.NEO.Hazardous }
	assert.Panics(t, func() { slices.Collect(db.Query(unguarded)) })
}

func TestQueryEarlyBreak(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	visited := 0
	counting := func(*ontology.CloseApproach) bool { visited++; return true }
	for range db.Query(counting) {
		break
	}
	assert.Equal(t, 1, visited)
}

func TestLimit(t *testing.T) {
	neos, approaches := fixture(t)
	db, err := New(neos, approaches)
	require.NoError(t, err)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unlimited zero", 0, 6},
		{"unlimited negative", -1, 6},
		{"two", 2, 2},
		{"more than available", 100, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Limit(db.Query(), tt.limit))
			assert.Len(t, got, tt.want)
			assert.Equal(t, approaches[:tt.want], got)
		})
	}

	pulled := 0
	counting := func(*ontology.CloseApproach) bool { pulled++; return true }
	slices.Collect(Limit(db.Query(counting), 2))
	assert.Equal(t, 2, pulled)
}
