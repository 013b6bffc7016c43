package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is one query document.
type Definition struct {
	// Name identifies the query within its file.
	Name string `yaml:"name"`

	// Description is free text shown by the CLI.
	Description string `yaml:"description,omitempty"`

	// From is the root catalog table.
	From string `yaml:"from"`

	// As overrides the root alias. Defaults to the table's entity alias.
	As string `yaml:"as,omitempty"`

	// Model sources the query as an entity model: whole rows only, no
	// explicit selections.
	Model bool `yaml:"model,omitempty"`

	Joins     []JoinDef   `yaml:"joins,omitempty"`
	Where     []yaml.Node `yaml:"where,omitempty"`
	Select    []SelectDef `yaml:"select,omitempty"`
	Group     []yaml.Node `yaml:"group,omitempty"`
	Aggregate []yaml.Node `yaml:"aggregate,omitempty"`
	Order     []OrderDef  `yaml:"order,omitempty"`
	Cursor    *CursorDef  `yaml:"cursor,omitempty"`
}

// JoinDef joins a catalog table. On may be omitted for cross and embedded
// joins.
type JoinDef struct {
	Table string    `yaml:"table"`
	As    string    `yaml:"as,omitempty"`
	Kind  string    `yaml:"kind,omitempty"`
	On    yaml.Node `yaml:"on,omitempty"`
}

// SelectDef is one output column. Named selections can be referenced from
// orderings with {ref: name}.
type SelectDef struct {
	Name string    `yaml:"name,omitempty"`
	Expr yaml.Node `yaml:"expr"`
}

// OrderDef is one ordering, ascending unless Desc is set.
type OrderDef struct {
	Expr yaml.Node `yaml:"expr"`
	Desc bool      `yaml:"desc,omitempty"`
}

// CursorDef is the page window. A missing limit means no limit.
type CursorDef struct {
	Offset int  `yaml:"offset,omitempty"`
	Limit  *int `yaml:"limit,omitempty"`
}

// DefinitionError reports an invalid definition, positioned when the
// offending YAML node is known.
type DefinitionError struct {
	Query   string
	Field   string
	Message string
	Line    int
	Column  int
}

func (e *DefinitionError) Error() string {
	prefix := e.Field
	if e.Query != "" {
		prefix = e.Query + ": " + e.Field
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s: %s", e.Line, e.Column, prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func nodeError(n *yaml.Node, field, format string, args ...any) *DefinitionError {
	e := &DefinitionError{Field: field, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// Load reads every definition in the YAML file at path.
func Load(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML stream of one or more definitions. Unknown fields
// are rejected and names must be unique.
func Parse(data []byte) ([]*Definition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var (
		defs  []*Definition
		names = make(map[string]bool)
	)
	for {
		var def Definition
		err := decoder.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := validate(&def); err != nil {
			return nil, fmt.Errorf("invalid query definition: %w", err)
		}
		if names[def.Name] {
			return nil, fmt.Errorf("invalid query definition: %w",
				&DefinitionError{Query: def.Name, Field: "name", Message: "defined twice"})
		}
		names[def.Name] = true
		defs = append(defs, &def)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("no query definitions found")
	}
	return defs, nil
}

// Find returns the definition called name.
func Find(defs []*Definition, name string) (*Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func validate(d *Definition) error {
	fail := func(field, msg string) error {
		return &DefinitionError{Query: d.Name, Field: field, Message: msg}
	}

	if d.Name == "" {
		return fail("name", "is required")
	}
	if d.From == "" {
		return fail("from", "is required")
	}
	for i, j := range d.Joins {
		if j.Table == "" {
			return fail(fmt.Sprintf("joins[%d].table", i), "is required")
		}
	}
	for i, s := range d.Select {
		if s.Expr.Kind == 0 {
			return fail(fmt.Sprintf("select[%d].expr", i), "is required")
		}
	}
	if d.Model && len(d.Select) > 0 {
		return fail("select", "model queries return whole rows")
	}
	for i, o := range d.Order {
		if o.Expr.Kind == 0 {
			return fail(fmt.Sprintf("order[%d].expr", i), "is required")
		}
	}
	if c := d.Cursor; c != nil {
		if c.Offset < 0 {
			return fail("cursor.offset", "must be non-negative")
		}
		if c.Limit != nil && *c.Limit < 0 {
			return fail("cursor.limit", "must be non-negative")
		}
	}
	return nil
}

// ParseValue reads a parameter value written on a command line, typed the
// way YAML types a scalar: 18 is an int, 1.5 a float, true a bool.
func ParseValue(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parse value %q: %w", s, err)
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil, fmt.Errorf("parse value %q: not a scalar", s)
	}
	return v, nil
}
