package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/collections/internal/querydef"
	"github.com/roach88/collections/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Params []string
	Count  bool
	Init   string
}

// RunResult is the JSON output of run.
type RunResult struct {
	Query   string   `json:"query"`
	ID      string   `json:"id,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Count   *int64   `json:"count,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Run a query definition against the database",
		Long: `Build a query definition against the catalog, compile it in the driver's
dialect and run it. The rows of the page selected by the query's cursor are
printed; --count prints how many rows the query yields instead.

Example:
  collections run adults --db ./shop.db
  collections run adults --driver pgx --db postgres://localhost/shop --param min_age=30
  collections run adults --db :memory: --init ./schema.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter value as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the row count instead of the rows")
	cmd.Flags().StringVar(&opts.Init, "init", "", "SQL script to execute before the query")

	return cmd
}

func runQuery(ctx context.Context, opts *RunOptions, name string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	params, err := ParseParams(opts.Params)
	if err != nil {
		code, msg := codeOf(err, ErrCodeConfig)
		return formatter.Fail(ExitCommandError, code, msg, nil)
	}
	if opts.Config.Database.DSN == "" {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "no database configured (--db)", nil)
	}

	cat, defs, err := loadInputs(opts.RootOptions, formatter, name)
	if err != nil {
		return err
	}
	plan, err := querydef.Build(defs[0], cat, params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQueryBuild, err.Error(), map[string]string{"query": name})
	}

	st, err := store.Open(opts.Config.Database.Driver, opts.Config.Database.DSN, store.WithLogger(opts.Logger))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExecute, err.Error(), nil)
	}
	defer st.Close()
	formatter.VerboseLog("Opened %s database (%s dialect)", st.Driver(), st.Dialect())

	if opts.Init != "" {
		script, err := os.ReadFile(opts.Init)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("init script: %v", err), nil)
		}
		if err := st.Exec(ctx, string(script)); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeExecute, fmt.Sprintf("init script: %v", err), nil)
		}
	}

	col := plan.Collection()

	if opts.Count {
		n, err := st.Count(ctx, col)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeExecute, err.Error(), map[string]string{"query": name})
		}
		if formatter.Format == "json" {
			return formatter.Success(RunResult{Query: name, Count: &n})
		}
		fmt.Fprintln(formatter.Writer, n)
		return nil
	}

	res, err := st.Fetch(ctx, col)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExecute, err.Error(), map[string]string{"query": name})
	}
	if formatter.Format == "json" {
		return formatter.Success(RunResult{Query: name, ID: res.ID, Columns: res.Columns, Rows: res.Rows})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for i, c := range res.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range res.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				v = "NULL"
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "(%d row(s))\n", len(res.Rows))
	return nil
}
