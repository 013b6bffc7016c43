package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/querydef"
	"github.com/roach88/collections/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Params []string
	Paged  bool
	Count  bool
}

// CompiledQuery is the output of compile for one definition.
type CompiledQuery struct {
	Name   string       `json:"name"`
	SQL    string       `json:"sql"`
	Params []ParamValue `json:"params"`
	Cursor string       `json:"cursor"`
}

// ParamValue is one bound parameter, in order of first appearance.
type ParamValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [query]",
		Short: "Compile query definitions to SQL",
		Long: `Compile the query definitions of the query file against the catalog and
print the SQL and its parameters. Without a query name every definition is
compiled.

By default the statement follows the fixed clause order with the cursor
reported separately. --paged prints the executable statement with LIMIT and
OFFSET; --count prints the statement counting its rows.

Example:
  collections compile --catalog ./catalog --queries ./queries.yaml adults
  collections compile adults --param min_age=30 --dialect dollar`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runCompile(opts, name, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter value as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Paged, "paged", false, "print the executable statement with LIMIT/OFFSET")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the row counting statement")
	cmd.MarkFlagsMutuallyExclusive("paged", "count")

	return cmd
}

func runCompile(opts *CompileOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if len(opts.Params) > 0 && name == "" {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "--param requires a query name", nil)
	}
	params, err := ParseParams(opts.Params)
	if err != nil {
		code, msg := codeOf(err, ErrCodeConfig)
		return formatter.Fail(ExitCommandError, code, msg, nil)
	}
	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	cat, defs, err := loadInputs(opts.RootOptions, formatter, name)
	if err != nil {
		return err
	}

	compiled := make([]CompiledQuery, 0, len(defs))
	for _, def := range defs {
		formatter.VerboseLog("Compiling query: %s", def.Name)
		cq, code, err := compileDefinition(def, cat, params, dialect, opts.Paged, opts.Count)
		if err != nil {
			return formatter.Fail(ExitCommandError, code, err.Error(), map[string]string{"query": def.Name})
		}
		compiled = append(compiled, cq)
	}

	if formatter.Format == "json" {
		return formatter.Success(compiled)
	}
	for i, cq := range compiled {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintf(formatter.Writer, "-- %s (%s)\n%s;\n", cq.Name, cq.Cursor, cq.SQL)
		for _, p := range cq.Params {
			fmt.Fprintf(formatter.Writer, "--   %s = %#v\n", p.Name, p.Value)
		}
	}
	return nil
}

// loadInputs loads the catalog and the definitions selected by name,
// reporting failures through formatter.
func loadInputs(opts *RootOptions, formatter *OutputFormatter, name string) (*catalog.Catalog, []*querydef.Definition, error) {
	cat, files, err := LoadCatalog(opts.Config.Catalog)
	if err != nil {
		code, msg := codeOf(err, ErrCodeCatalog)
		return nil, nil, formatter.Fail(ExitCommandError, code, msg, nil)
	}
	formatter.VerboseLog("Loaded %d table(s) from %d CUE file(s)", cat.Len(), files)

	all, err := LoadQueries(opts.Config.Queries)
	if err != nil {
		code, msg := codeOf(err, ErrCodeQueryFile)
		return nil, nil, formatter.Fail(ExitCommandError, code, msg, nil)
	}
	defs, err := SelectQueries(all, name)
	if err != nil {
		code, msg := codeOf(err, ErrCodeNotFound)
		return nil, nil, formatter.Fail(ExitCommandError, code, msg, nil)
	}
	return cat, defs, nil
}

func compileDefinition(def *querydef.Definition, cat *catalog.Catalog, params map[string]any, dialect querysql.Dialect, paged, count bool) (CompiledQuery, string, error) {
	plan, err := querydef.Build(def, cat, params)
	if err != nil {
		return CompiledQuery{}, ErrCodeQueryBuild, err
	}

	q, err := querysql.Compile(plan.Collection(), querysql.WithDialect(dialect))
	if err != nil {
		return CompiledQuery{}, ErrCodeCompile, err
	}

	text := q.Text
	switch {
	case paged:
		text, _, err = q.Paged()
	case count:
		text, _, err = q.Count()
	}
	if err != nil {
		return CompiledQuery{}, ErrCodeCompile, err
	}

	cq := CompiledQuery{Name: def.Name, SQL: text, Params: []ParamValue{}, Cursor: q.Cursor.String()}
	for _, name := range q.Names {
		cq.Params = append(cq.Params, ParamValue{Name: name, Value: q.Params[name]})
	}
	return cq, "", nil
}
