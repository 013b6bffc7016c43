package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/querydef"
	"github.com/roach88/collections/internal/querysql"
)

// ValidationError is one definition that does not build or compile.
type ValidationError struct {
	Query   string `json:"query"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Queries int               `json:"queries"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every query definition against the catalog",
		Long: `Build and compile every definition of the query file against the catalog
without touching a database, reporting all failures instead of the first.

Example:
  collections validate --catalog ./catalog --queries ./queries.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, defs, err := loadInputs(opts, formatter, "")
	if err != nil {
		return err
	}

	var errs []ValidationError
	for _, def := range defs {
		formatter.VerboseLog("Validating query: %s", def.Name)
		if err := validateDefinition(def, cat); err != nil {
			errs = append(errs, *err)
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, len(defs), errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Queries: len(defs)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All %d queries valid\n", len(defs))
	return nil
}

func validateDefinition(def *querydef.Definition, cat *catalog.Catalog) *ValidationError {
	plan, err := querydef.Build(def, cat, nil)
	if err != nil {
		v := &ValidationError{Query: def.Name, Code: ErrCodeQueryBuild, Message: err.Error()}
		var de *querydef.DefinitionError
		if errors.As(err, &de) {
			v.Field, v.Message, v.Line, v.Column = de.Field, de.Message, de.Line, de.Column
		}
		return v
	}
	if _, err := querysql.Compile(plan.Collection()); err != nil {
		return &ValidationError{Query: def.Name, Code: ErrCodeCompile, Message: err.Error()}
	}
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, queries int, errs []ValidationError) error {
	exitErr := &ExitError{
		Code:     ExitFailure,
		Message:  fmt.Sprintf("validation failed with %d error(s)", len(errs)),
		Reported: true,
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Queries: queries, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s: line %d:%d\n", err.Query, err.Line, err.Column)
		} else {
			fmt.Fprintf(formatter.Writer, "%s\n", err.Query)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
		}
	}
	return exitErr
}
