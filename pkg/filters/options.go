// Package filters builds query predicates from user supplied criteria.
package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"neo-overwatch/pkg/timeutil"
)

var validate = validator.New()

var ErrInvalidRange = errors.New("minimum exceeds maximum")

// Params is the string form of the criteria, as received from command line
// flags, URL query parameters or a JSON request. Empty fields are unset.
type Params struct {
	Date        string `json:"date,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	DistanceMin string `json:"distance_min,omitempty"`
	DistanceMax string `json:"distance_max,omitempty"`
	VelocityMin string `json:"velocity_min,omitempty"`
	VelocityMax string `json:"velocity_max,omitempty"`
	DiameterMin string `json:"diameter_min,omitempty"`
	DiameterMax string `json:"diameter_max,omitempty"`
	Hazardous   string `json:"hazardous,omitempty"`
	Designation string `json:"designation,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Options holds parsed criteria. A nil field is not filtered on.
type Options struct {
	Date        *time.Time `json:"date,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DistanceMin *float64   `json:"distance_min,omitempty" validate:"omitempty,gte=0"`
	DistanceMax *float64   `json:"distance_max,omitempty" validate:"omitempty,gte=0"`
	VelocityMin *float64   `json:"velocity_min,omitempty" validate:"omitempty,gte=0"`
	VelocityMax *float64   `json:"velocity_max,omitempty" validate:"omitempty,gte=0"`
	DiameterMin *float64   `json:"diameter_min,omitempty" validate:"omitempty,gte=0"`
	DiameterMax *float64   `json:"diameter_max,omitempty" validate:"omitempty,gte=0"`
	Hazardous   *bool      `json:"hazardous,omitempty"`
	Designation *string    `json:"designation,omitempty" validate:"omitempty,min=1"`
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1"`
}

// Parse converts the string criteria to Options and validates them.
func (p Params) Parse() (Options, error) {
	var (
		opts Options
		errs []error
	)

	date := func(field, value string) *time.Time {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		t, err := timeutil.ParseDate(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return nil
		}
		return &t
	}
	number := func(field, value string) *float64 {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid number %q", field, value))
			return nil
		}
		return &v
	}
	text := func(value string) *string {
		if value == "" {
			return nil
		}
		return &value
	}

	opts.Date = date("date", p.Date)
	opts.StartDate = date("start_date", p.StartDate)
	opts.EndDate = date("end_date", p.EndDate)
	opts.DistanceMin = number("distance_min", p.DistanceMin)
	opts.DistanceMax = number("distance_max", p.DistanceMax)
	opts.VelocityMin = number("velocity_min", p.VelocityMin)
	opts.VelocityMax = number("velocity_max", p.VelocityMax)
	opts.DiameterMin = number("diameter_min", p.DiameterMin)
	opts.DiameterMax = number("diameter_max", p.DiameterMax)
	opts.Designation = text(p.Designation)
	opts.Name = text(p.Name)

	if h := strings.TrimSpace(p.Hazardous); h != "" {
		v, err := strconv.ParseBool(h)
		if err != nil {
			errs = append(errs, fmt.Errorf("hazardous: invalid boolean %q", p.Hazardous))
		} else {
			opts.Hazardous = &v
		}
	}

	if len(errs) > 0 {
		return Options{}, errors.Join(errs...)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks bounds: numeric bounds are non-negative and every
// minimum is at most its maximum.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid filter options: %w", err)
	}

	ranges := []struct {
		name     string
		min, max *float64
	}{
		{"distance", o.DistanceMin, o.DistanceMax},
		{"velocity", o.VelocityMin, o.VelocityMax},
		{"diameter", o.DiameterMin, o.DiameterMax},
	}
	for _, r := range ranges {
		if r.min != nil && r.max != nil && *r.min > *r.max {
			return fmt.Errorf("%s: %w", r.name, ErrInvalidRange)
		}
	}
	if o.StartDate != nil && o.EndDate != nil && o.StartDate.After(*o.EndDate) {
		return fmt.Errorf("date: %w", ErrInvalidRange)
	}
	return nil
}
