package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epidemic-sim/epidemic-sim/epi"
)

// paramEntry is one parameter value in a disease defaults file, with optional
// confidence interval and literature reference.
type paramEntry struct {
	Value float64  `yaml:"value"`
	Low   *float64 `yaml:"low"`
	High  *float64 `yaml:"high"`
	Ref   string   `yaml:"ref"`
}

// diseaseFileYAML is the full structure of a disease defaults file.
type diseaseFileYAML struct {
	Diseases map[string]map[string]paramEntry `yaml:"diseases"`
}

// loadDisease reads a disease defaults file and picks one named entry.
// Parsing is strict: unknown fields (typos) are errors, not silent defaults.
func loadDisease(path, name string) (epi.Disease, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return epi.Disease{}, fmt.Errorf("reading disease defaults: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file diseaseFileYAML
	if err := decoder.Decode(&file); err != nil {
		return epi.Disease{}, fmt.Errorf("parsing disease defaults: %w", err)
	}

	entry, ok := file.Diseases[name]
	if !ok {
		return epi.Disease{}, fmt.Errorf("disease %q not found in %s", name, path)
	}
	disease := epi.Disease{Name: name, Params: make(map[string]epi.Param, len(entry))}
	for group, p := range entry {
		param := epi.Param{Value: p.Value, Ref: p.Ref}
		if p.Low != nil && p.High != nil {
			param.Low, param.High, param.HasCI = *p.Low, *p.High, true
		}
		disease.Params[group] = param
	}
	return disease, nil
}

// resolveDisease picks the disease defaults for the CLI flags: a file entry
// when --disease-file is given, the packaged defaults otherwise.
func resolveDisease(path, name string) (epi.Disease, error) {
	if path == "" {
		return epi.DefaultDisease(), nil
	}
	if name == "" {
		return epi.Disease{}, fmt.Errorf("--disease-file requires --disease to name an entry")
	}
	return loadDisease(path, name)
}
