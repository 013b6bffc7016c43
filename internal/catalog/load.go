package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/collections/internal/expr"
)

// LoadError reports a malformed catalog definition.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE loads the CUE package in dir and decodes its catalog.
//
// The expected shape is:
//
//	tables: users: {
//	    entity: "User"
//	    columns: [
//	        {name: "id", type: "int"},
//	        {name: "name", type: "string"},
//	    ]
//	}
func LoadCUE(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Field: "cue", Message: "no CUE instances loaded"}
	}
	if err := instances[0].Err; err != nil {
		return nil, formatCUEError(err)
	}

	return Decode(ctx.BuildInstance(instances[0]))
}

// ParseCUE decodes a catalog from CUE source text.
func ParseCUE(filename, src string) (*Catalog, error) {
	ctx := cuecontext.New()
	return Decode(ctx.CompileString(src, cue.Filename(filename)))
}

// Decode reads the tables struct out of a built CUE value.
func Decode(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, &LoadError{Field: "tables", Message: "tables is required", Pos: v.Pos()}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []*Table
	for iter.Next() {
		t, err := decodeTable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, &LoadError{Field: "tables", Message: "at least one table is required", Pos: tablesVal.Pos()}
	}

	cat, err := New(tables...)
	if err != nil {
		return nil, &LoadError{Field: "tables", Message: err.Error(), Pos: tablesVal.Pos()}
	}
	return cat, nil
}

func decodeTable(name string, v cue.Value) (*Table, error) {
	entity := ""
	if entityVal := v.LookupPath(cue.ParsePath("entity")); entityVal.Exists() {
		s, err := entityVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		entity = s
	}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		name = s
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &LoadError{Field: "columns", Message: fmt.Sprintf("table %s has no columns", name), Pos: v.Pos()}
	}
	list, err := colsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []ColumnDef
	seen := make(map[string]bool)
	for list.Next() {
		colVal := list.Value()

		colName, err := colVal.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &LoadError{Field: "columns.name", Message: "column name must be a string", Pos: colVal.Pos()}
		}
		if seen[colName] {
			return nil, &LoadError{Field: "columns.name", Message: fmt.Sprintf("duplicate column %q", colName), Pos: colVal.Pos()}
		}
		seen[colName] = true

		typeName, err := colVal.LookupPath(cue.ParsePath("type")).String()
		if err != nil {
			return nil, &LoadError{Field: "columns.type", Message: "column type must be a string", Pos: colVal.Pos()}
		}
		typ, ok := expr.ParsePrimitive(typeName)
		if !ok {
			return nil, &LoadError{Field: "columns.type", Message: fmt.Sprintf("unknown column type %q", typeName), Pos: colVal.Pos()}
		}

		defs = append(defs, Col(colName, typ))
	}
	if len(defs) == 0 {
		return nil, &LoadError{Field: "columns", Message: fmt.Sprintf("table %s has no columns", name), Pos: colsVal.Pos()}
	}

	return NewEntityTable(entity, name, defs...), nil
}

func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Field: "cue", Message: first.Error()}
}
