package querysql

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect selects how parameter markers and identifiers are spelled.
//
// Clauses are rendered with positional "?" markers and the name of the
// parameter behind each marker; the dialect rewrites them once a complete
// statement has been assembled.
type Dialect int

const (
	// Named renders ":name" markers (SQLite, JPQL-style drivers).
	Named Dialect = iota
	// Dollar renders "$1", "$2", ... markers and double-quoted
	// identifiers (PostgreSQL).
	Dollar
	// Question renders positional "?" markers.
	Question
)

var dialectNames = map[Dialect]string{
	Named:    "named",
	Dollar:   "dollar",
	Question: "question",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect reads a dialect name. Driver names are accepted as aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "named", "sqlite", "sqlite3":
		return Named, nil
	case "dollar", "postgres", "pgx":
		return Dollar, nil
	case "question", "positional":
		return Question, nil
	default:
		return Named, fmt.Errorf("unknown dialect %q", name)
	}
}

// Ident spells an identifier.
func (d Dialect) Ident(name string) string {
	if d == Dollar {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// finalize rewrites the positional markers of text for the dialect and
// returns the matching driver arguments. markers holds the parameter name
// behind each "?" in order of appearance.
func (d Dialect) finalize(text string, markers []string, params map[string]any) (string, []any, error) {
	switch d {
	case Question:
		args := make([]any, len(markers))
		for i, name := range markers {
			args[i] = params[name]
		}
		return text, args, nil

	case Dollar:
		out, err := sq.Dollar.ReplacePlaceholders(text)
		if err != nil {
			return "", nil, fmt.Errorf("replace placeholders: %w", err)
		}
		args := make([]any, len(markers))
		for i, name := range markers {
			args[i] = params[name]
		}
		return out, args, nil

	default:
		var b strings.Builder
		b.Grow(len(text) + 8*len(markers))
		next := 0
		for i := 0; i < len(text); i++ {
			if text[i] != '?' {
				b.WriteByte(text[i])
				continue
			}
			if next >= len(markers) {
				return "", nil, fmt.Errorf("more markers than parameters in %q", text)
			}
			b.WriteByte(':')
			b.WriteString(markers[next])
			next++
		}
		if next != len(markers) {
			return "", nil, fmt.Errorf("%d parameters for %d markers", len(markers), next)
		}

		seen := make(map[string]bool, len(markers))
		args := make([]any, 0, len(markers))
		for _, name := range markers {
			if seen[name] {
				continue
			}
			seen[name] = true
			args = append(args, sql.Named(name, params[name]))
		}
		return b.String(), args, nil
	}
}
