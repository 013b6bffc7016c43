package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TableInfo describes one catalog table.
type TableInfo struct {
	Name    string       `json:"name"`
	Entity  string       `json:"entity,omitempty"`
	Alias   string       `json:"alias"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the catalog",
		Long: `List the tables of the CUE catalog with their columns and the alias
queries use for them by default.

Example:
  collections tables --catalog ./catalog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, files, err := LoadCatalog(opts.Config.Catalog)
	if err != nil {
		code, msg := codeOf(err, ErrCodeCatalog)
		return formatter.Fail(ExitCommandError, code, msg, nil)
	}
	formatter.VerboseLog("Loaded %d table(s) from %d CUE file(s) in %s", cat.Len(), files, opts.Config.Catalog)

	infos := make([]TableInfo, 0, cat.Len())
	for _, t := range cat.Tables() {
		info := TableInfo{Name: t.Name(), Entity: t.Entity(), Alias: t.DefaultAlias()}
		for _, c := range t.Columns() {
			info.Columns = append(info.Columns, ColumnInfo{Name: c.Name(), Type: c.Type().String()})
		}
		infos = append(infos, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		if info.Entity != "" {
			fmt.Fprintf(formatter.Writer, "%s (entity %s, alias %s)\n", info.Name, info.Entity, info.Alias)
		} else {
			fmt.Fprintf(formatter.Writer, "%s\n", info.Name)
		}
		for _, c := range info.Columns {
			fmt.Fprintf(formatter.Writer, "  %-12s %s\n", c.Name, c.Type)
		}
	}
	return nil
}
