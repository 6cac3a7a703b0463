package epi

import "fmt"

// AgeBucket is one band of an age-stratified population breakdown.
type AgeBucket struct {
	Label      string  // e.g. "0-9", "80+"
	Population float64 // head count in the band
}

// DemographyRecord carries population data for a named region. The core
// reads only Population (and optionally the age buckets) once, at model
// construction, to scale the initial compartment values.
type DemographyRecord struct {
	Region     string
	Population float64
	AgeBuckets []AgeBucket
}

// DemographySource resolves region keys to demography records. Loading from
// national statistical databases is a host concern; the core only consumes
// this interface.
type DemographySource interface {
	Record(region string) (*DemographyRecord, error)
}

// StaticDemography is an in-memory DemographySource keyed by region code.
type StaticDemography map[string]DemographyRecord

func (d StaticDemography) Record(region string) (*DemographyRecord, error) {
	rec, ok := d[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	rec.Region = region
	return &rec, nil
}
