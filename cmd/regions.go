package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epidemic-sim/epidemic-sim/epi"
)

// regionEntry is one region in a demography table file.
type regionEntry struct {
	Population float64 `yaml:"population"`
	AgeBuckets []struct {
		Label      string  `yaml:"label"`
		Population float64 `yaml:"population"`
	} `yaml:"age_buckets"`
}

// regionsFileYAML is the full structure of a region table file.
type regionsFileYAML struct {
	Regions map[string]regionEntry `yaml:"regions"`
}

// builtinRegions is a small packaged demography table (2020 totals, rounded)
// so the CLI works without a region file. Host applications with real
// demographic databases supply their own epi.DemographySource.
func builtinRegions() epi.StaticDemography {
	return epi.StaticDemography{
		"BR": {Population: 212_559_417},
		"IT": {Population: 60_461_826},
		"US": {Population: 331_002_651},
		"IN": {Population: 1_380_004_385},
		"DE": {Population: 83_783_942},
	}
}

// loadRegions reads a YAML region table into a StaticDemography. Strict
// parsing, same as the disease defaults.
func loadRegions(path string) (epi.StaticDemography, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading region table: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file regionsFileYAML
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing region table: %w", err)
	}

	table := make(epi.StaticDemography, len(file.Regions))
	for key, entry := range file.Regions {
		rec := epi.DemographyRecord{Population: entry.Population}
		for _, b := range entry.AgeBuckets {
			rec.AgeBuckets = append(rec.AgeBuckets, epi.AgeBucket{Label: b.Label, Population: b.Population})
		}
		table[key] = rec
	}
	return table, nil
}

// resolveRegions picks the demography source for the CLI flags.
func resolveRegions(path string) (epi.DemographySource, error) {
	if path == "" {
		return builtinRegions(), nil
	}
	return loadRegions(path)
}
