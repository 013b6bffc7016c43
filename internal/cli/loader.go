package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/querydef"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeCatalog    = "E002" // Catalog failed to load or decode
	ErrCodeQueryFile  = "E003" // Query file failed to parse
	ErrCodeQueryBuild = "E004" // Query definition does not match the catalog
	ErrCodeNotFound   = "E005" // Path or query not found
	ErrCodeCompile    = "E006" // SQL compilation failed
	ErrCodeExecute    = "E007" // Database open or query execution failed
	ErrCodeConfig     = "E008" // Configuration or flag error
	ErrCodeScenario   = "E009" // One or more scenarios failed
)

// LoadError is a loading failure with its CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalog loads the CUE catalog package in dir.
func LoadCatalog(dir string) (*catalog.Catalog, int, error) {
	if dir == "" {
		return nil, 0, &LoadError{Code: ErrCodeConfig, Message: "no catalog directory configured (--catalog)"}
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeCatalog, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, 0, &LoadError{Code: ErrCodeCatalog, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	cat, err := catalog.LoadCUE(dir)
	if err != nil {
		var le *catalog.LoadError
		if errors.As(err, &le) {
			return nil, len(files), &LoadError{Code: ErrCodeCatalog, Message: le.Field + ": " + le.Message, Pos: le.Pos}
		}
		return nil, len(files), &LoadError{Code: ErrCodeCatalog, Message: err.Error()}
	}
	return cat, len(files), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// LoadQueries reads the query definitions in path.
func LoadQueries(path string) ([]*querydef.Definition, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
	}
	defs, err := querydef.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeQueryFile, Message: err.Error()}
	}
	return defs, nil
}

// SelectQueries returns the definition called name, or every definition
// when name is empty.
func SelectQueries(defs []*querydef.Definition, name string) ([]*querydef.Definition, error) {
	if name == "" {
		return defs, nil
	}
	def, ok := querydef.Find(defs, name)
	if !ok {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no query named %q", name)}
	}
	return []*querydef.Definition{def}, nil
}

// ParseParams reads repeated name=value flags. Values are typed like YAML
// scalars.
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("parameter %q is not name=value", pair)}
		}
		value, err := querydef.ParseValue(raw)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
		}
		params[name] = value
	}
	return params, nil
}

// codeOf returns the CLI error code carried by err.
func codeOf(err error, fallback string) (string, string) {
	var le *LoadError
	if errors.As(err, &le) {
		if le.Pos.IsValid() {
			return le.Code, fmt.Sprintf("%s:%d:%d: %s", le.Pos.Filename(), le.Pos.Line(), le.Pos.Column(), le.Message)
		}
		return le.Code, le.Message
	}
	return fallback, err.Error()
}
