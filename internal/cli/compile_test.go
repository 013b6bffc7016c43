package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileCommand_Text(t *testing.T) {
	out, _, err := execute(t, shopArgs("compile", "adults")...)
	require.NoError(t, err)

	want := "-- adults (cursor(offset=0, limit=10))\n" +
		"SELECT * FROM users AS user WHERE user.age > :filter0_min_age ORDER BY user.name ASC;\n" +
		"--   filter0_min_age = 18\n"
	assert.Equal(t, want, out)
}

func TestCompileCommand_AllQueriesJSON(t *testing.T) {
	out, _, err := execute(t, shopArgs("compile", "--format", "json")...)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []CompiledQuery `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)

	assert.Equal(t, "adults", resp.Data[0].Name)
	assert.Equal(t, []ParamValue{{Name: "filter0_min_age", Value: 18.0}}, resp.Data[0].Params)

	spend := resp.Data[1]
	assert.Equal(t, "spend", spend.Name)
	assert.Equal(t, "SELECT orders.user_id, SUM(orders.total) AS spent FROM orders ORDER BY spent DESC GROUP BY orders.user_id", spend.SQL)
	assert.Empty(t, spend.Params)
	assert.Equal(t, "cursor(offset=0)", spend.Cursor)
}

func TestCompileCommand_Variants(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "paged",
			args: []string{"compile", "adults", "--paged"},
			want: "SELECT * FROM users AS user WHERE user.age > :filter0_min_age ORDER BY user.name ASC LIMIT 10;",
		},
		{
			name: "paged grouping precedes ordering",
			args: []string{"compile", "spend", "--paged"},
			want: "SELECT orders.user_id, SUM(orders.total) AS spent FROM orders GROUP BY orders.user_id ORDER BY spent DESC;",
		},
		{
			name: "count",
			args: []string{"compile", "adults", "--count"},
			want: "SELECT COUNT(*) FROM users AS user WHERE user.age > :filter0_min_age;",
		},
		{
			name: "dollar dialect",
			args: []string{"compile", "adults", "--dialect", "dollar"},
			want: `SELECT * FROM "users" AS "user" WHERE "user"."age" > $1 ORDER BY "user"."name" ASC;`,
		},
		{
			name: "driver selects dialect",
			args: []string{"compile", "adults", "--driver", "pgx"},
			want: `SELECT * FROM "users" AS "user" WHERE "user"."age" > $1 ORDER BY "user"."name" ASC;`,
		},
		{
			name: "question dialect",
			args: []string{"compile", "adults", "--dialect", "question"},
			want: "SELECT * FROM users AS user WHERE user.age > ? ORDER BY user.name ASC;",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, shopArgs(tc.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tc.want+"\n")
		})
	}
}

func TestCompileCommand_ParamOverride(t *testing.T) {
	out, _, err := execute(t, shopArgs("compile", "adults", "--param", "min_age=30")...)
	require.NoError(t, err)
	assert.Contains(t, out, "--   filter0_min_age = 30\n")
}

func TestCompileCommand_PagedAndCountExclusive(t *testing.T) {
	_, _, err := execute(t, shopArgs("compile", "adults", "--paged", "--count")...)
	require.Error(t, err)
}

func TestCompileCommand_Errors(t *testing.T) {
	badQueries := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badQueries, []byte("name: broken\nfrom: users\nwhere:\n  - {gt: [height, 1]}\n"), 0o644))
	unparsable := filepath.Join(t.TempDir(), "unparsable.yaml")
	require.NoError(t, os.WriteFile(unparsable, []byte("name: [\n"), 0o644))

	testCases := []struct {
		name     string
		args     []string
		code     string
		contains string
	}{
		{"unknown query", shopArgs("compile", "nope"), ErrCodeNotFound, `no query named "nope"`},
		{"missing catalog", []string{"compile", "--catalog", "testdata/missing", "--queries", "testdata/queries.yaml"}, ErrCodeNotFound, "catalog directory not found"},
		{"missing query file", []string{"compile", "--catalog", "testdata/shop", "--queries", "testdata/missing.yaml"}, ErrCodeNotFound, "query file not found"},
		{"unparsable query file", []string{"compile", "--catalog", "testdata/shop", "--queries", unparsable}, ErrCodeQueryFile, "failed to parse YAML"},
		{"bad param", shopArgs("compile", "adults", "--param", "min_age"), ErrCodeConfig, "is not name=value"},
		{"param without query", shopArgs("compile", "--param", "min_age=3"), ErrCodeConfig, "requires a query name"},
		{"unknown dialect", shopArgs("compile", "adults", "--dialect", "oracle"), ErrCodeConfig, "oracle"},
		{"unknown param", shopArgs("compile", "adults", "--param", "max_age=3"), ErrCodeQueryBuild, `unknown parameter "max_age"`},
		{"build error", []string{"compile", "--catalog", "testdata/shop", "--queries", badQueries}, ErrCodeQueryBuild, `has no column "height"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, append(tc.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.True(t, exitErr.Reported)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tc.contains)
		})
	}
}

func TestCompileCommand_TextError(t *testing.T) {
	out, _, err := execute(t, shopArgs("compile", "nope")...)
	require.Error(t, err)
	assert.Equal(t, "Error [E005]: no query named \"nope\"\n", out)
}
