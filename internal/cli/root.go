package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/collections/internal/querysql"
)

// RootOptions holds global flags for all commands, and the configuration
// merged from them before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Flag values; read through Config, which also merges env and file.
	Catalog string
	Queries string
	Driver  string
	DSN     string
	Dialect string

	Config     *Config
	ConfigPath string
	Logger     *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the collections CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Compose collections of catalog tables into SQL queries",
		Long: `collections builds queries by composing operators (filters, joins,
orderings, groupings, cursors) over tables described in a CUE catalog, compiles
them to parameterised SQL and runs them on SQLite or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, path, err := LoadConfig(cmd, opts.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeConfig+": configuration", err)
			}
			opts.Config, opts.ConfigPath = cfg, path

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: collections.yaml in the working directory or a parent)")
	flags.StringVar(&opts.Catalog, "catalog", "", "CUE catalog directory")
	flags.StringVar(&opts.Queries, "queries", "", "YAML query definition file")
	flags.StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|pgx)")
	flags.StringVar(&opts.DSN, "db", "", "database DSN or SQLite path")
	flags.StringVar(&opts.Dialect, "dialect", "", "parameter dialect (named|dollar|question); defaults to the driver's")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// dialect is the configured dialect, or the one matching the driver.
func (o *RootOptions) dialect() (querysql.Dialect, error) {
	name := o.Config.Dialect
	if name == "" {
		name = o.Config.Database.Driver
	}
	return querysql.ParseDialect(name)
}
