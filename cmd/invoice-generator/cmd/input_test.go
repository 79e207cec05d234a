package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "valid", data: `{"companyInfo": {"name": "Acme"}, "items": [{"description": "x", "quantity": 1, "unitPrice": 2.5}]}`},
		{name: "empty", data: "  \n", wantErr: "input is empty"},
		{name: "malformed", data: `{"companyInfo":`, wantErr: "invalid input JSON"},
		{name: "trailing data", data: `{} {}`, wantErr: "unexpected data after JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseInput([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Acme", in.CompanyInfo.Name)
			require.Len(t, in.Items, 1)
			assert.Equal(t, "2.5", in.Items[0].UnitPrice.String())
		})
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.JSON", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.JSON")}, files)

	files, err = collectFiles([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = collectFiles([]string{stdinArg})
	require.NoError(t, err)
	assert.Equal(t, []string{stdinArg}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing.json")})
	assert.EqualError(t, err, "file not found: "+filepath.Join(dir, "missing.json"))
}
