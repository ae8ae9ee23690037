package ontology

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNearEarthObject(t *testing.T) {
	neo, err := NewNearEarthObject(" 433 ", "Eros", 16.84, false)
	require.NoError(t, err)
	assert.Equal(t, "433", neo.Designation)
	require.NotNil(t, neo.Name)
	assert.Equal(t, "Eros", *neo.Name)
	assert.Equal(t, "433 (Eros)", neo.FullName())
	assert.Empty(t, neo.Approaches)

	unnamed, err := NewNearEarthObject("2020 AB", "", math.NaN(), true)
	require.NoError(t, err)
	assert.Nil(t, unnamed.Name)
	assert.Equal(t, "", unnamed.NameOrEmpty())
	assert.Equal(t, "2020 AB", unnamed.FullName())
	assert.False(t, unnamed.HasDiameter())
	assert.Equal(t, "NEO 2020 AB has an unknown diameter and is potentially hazardous.", unnamed.String())

	_, err = NewNearEarthObject("   ", "x", 1, false)
	assert.ErrorIs(t, err, ErrEmptyDesignation)
}

func TestNearEarthObjectString(t *testing.T) {
	neo, err := NewNearEarthObject("433", "Eros", 16.84, false)
	require.NoError(t, err)
	assert.Equal(t, "NEO 433 (Eros) has a diameter of 16.840 km and is not potentially hazardous.", neo.String())
}

func TestNewCloseApproach(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ca, err := NewCloseApproach("433", time.Date(2029, time.April, 13, 23, 46, 0, 0, loc), 0.0002, 7.4)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ca.Time.Location())
	assert.Equal(t, "2029-04-13 21:46", ca.TimeString())
	assert.False(t, ca.Linked())
	assert.Equal(t, "On 2029-04-13 21:46, 433 approaches Earth at a distance of 0.00 au and a velocity of 7.40 km/s.", ca.String())

	neo, err := NewNearEarthObject("433", "Eros", 16.84, false)
	require.NoError(t, err)
	ca.NEO = neo
	assert.True(t, ca.Linked())
	assert.Contains(t, ca.String(), "433 (Eros) approaches Earth")

	_, err = NewCloseApproach("", time.Now(), 1, 1)
	assert.ErrorIs(t, err, ErrEmptyDesignation)
}
