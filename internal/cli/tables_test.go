package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesCommand_Text(t *testing.T) {
	out, _, err := execute(t, shopArgs("tables")...)
	require.NoError(t, err)

	assert.Contains(t, out, "users (entity User, alias user)\n")
	assert.Contains(t, out, "  age          int\n")
	assert.Contains(t, out, "orders\n")
	assert.Contains(t, out, "  total        float\n")
	assert.Contains(t, out, "products\n")
}

func TestTablesCommand_JSON(t *testing.T) {
	out, _, err := execute(t, shopArgs("tables", "--format", "json")...)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []TableInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)

	byName := make(map[string]TableInfo)
	for _, info := range resp.Data {
		byName[info.Name] = info
	}
	users := byName["users"]
	assert.Equal(t, "User", users.Entity)
	assert.Equal(t, "user", users.Alias)
	assert.Equal(t, []ColumnInfo{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "string"},
		{Name: "email", Type: "string"},
		{Name: "age", Type: "int"},
	}, users.Columns)
	assert.Equal(t, "orders", byName["orders"].Alias)
	assert.Empty(t, byName["orders"].Entity)
}

func TestTablesCommand_CatalogErrors(t *testing.T) {
	testCases := []struct {
		name    string
		catalog string
		code    string
	}{
		{"missing directory", "testdata/missing", ErrCodeNotFound},
		{"not a directory", "testdata/queries.yaml", ErrCodeNotFound},
		{"no cue files", t.TempDir(), ErrCodeCatalog},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, "tables", "--catalog", tc.catalog, "--format", "json")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}
