package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a query scenario: the queries to build against a
// catalog and what each must produce.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the CUE catalog directory.
	Catalog string `yaml:"catalog"`

	// Queries is the query definition file.
	Queries string `yaml:"queries"`

	// Schema is an SQL script run on a fresh in-memory SQLite database.
	// Without it queries are compiled but not executed.
	Schema string `yaml:"schema,omitempty"`

	// Cases are run in order.
	Cases []Case `yaml:"cases"`
}

// Case builds one query definition and checks the outcome.
type Case struct {
	// Query names the definition.
	Query string `yaml:"query"`

	// Params replace parameter values of the definition.
	Params map[string]any `yaml:"params,omitempty"`

	// Dialect of the compiled SQL; defaults to named.
	Dialect string `yaml:"dialect,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks of a case. Unset fields are not checked.
type Expect struct {
	SQL      string           `yaml:"sql,omitempty"`
	Params   map[string]any   `yaml:"params,omitempty"`
	Columns  []string         `yaml:"columns,omitempty"`
	Rows     []map[string]any `yaml:"rows,omitempty"`
	RowCount *int             `yaml:"row_count,omitempty"`
	Count    *int64           `yaml:"count,omitempty"`
	Error    string           `yaml:"error,omitempty"`
}

// executes reports whether the expectation needs a database.
func (e Expect) executes() bool {
	return e.Columns != nil || e.Rows != nil || e.RowCount != nil || e.Count != nil
}

// LoadScenario reads and parses a scenario YAML file. Catalog, queries and
// schema paths are resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "expects:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.Catalog, &scenario.Queries, &scenario.Schema} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if s.Queries == "" {
		return fmt.Errorf("queries is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for _, p := range []string{s.Catalog, s.Queries, s.Schema} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}

	for i, c := range s.Cases {
		if c.Query == "" {
			return fmt.Errorf("cases[%d]: query is required", i)
		}
		if c.Expect.Error != "" && (c.Expect.SQL != "" || c.Expect.executes()) {
			return fmt.Errorf("cases[%d].expect: error excludes other expectations", i)
		}
		if c.Expect.executes() && s.Schema == "" {
			return fmt.Errorf("cases[%d].expect: rows and counts require a schema", i)
		}
		if c.Expect.RowCount != nil && *c.Expect.RowCount < 0 {
			return fmt.Errorf("cases[%d].expect: row_count must be non-negative", i)
		}
	}
	return nil
}
