package ontology

import (
	"fmt"
	"strings"
	"time"

	"neo-overwatch/pkg/timeutil"
)

// CloseApproach is one recorded pass of an object near Earth. Designation
// is the reference read from the source record. NEO is nil until linking,
// and stays nil for approaches whose designation matches no known object.
type CloseApproach struct {
	Designation string           `json:"designation" db:"designation"`
	Time        time.Time        `json:"time" db:"approach_time"`
	Distance    float64          `json:"distance_au" db:"distance_au"`
	Velocity    float64          `json:"velocity_km_s" db:"velocity_km_s"`
	NEO         *NearEarthObject `json:"-"`
}

// NewCloseApproach validates the designation reference and stores the time
// in UTC.
func NewCloseApproach(designation string, t time.Time, distance, velocity float64) (*CloseApproach, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, ErrEmptyDesignation
	}
	return &CloseApproach{
		Designation: designation,
		Time:        t.UTC(),
		Distance:    distance,
		Velocity:    velocity,
	}, nil
}

// Linked reports whether the approach resolved to a known object.
func (c *CloseApproach) Linked() bool {
	return c.NEO != nil
}

// TimeString is the approach time at minute precision.
func (c *CloseApproach) TimeString() string {
	return timeutil.Format(c.Time)
}

func (c *CloseApproach) String() string {
	who := c.Designation
	if c.NEO != nil {
		who = c.NEO.FullName()
	}
	return fmt.Sprintf("On %s, %s approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		c.TimeString(), who, c.Distance, c.Velocity)
}
