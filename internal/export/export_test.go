package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/appscout/internal/model"
)

func sampleItems() []model.Item {
	author := "Acme & Sons"
	count := 12345
	mean := 4.5
	return []model.Item{
		{
			Title:       "Cool Game",
			URL:         "https://play.google.com/store/apps/details?id=cool",
			Author:      &author,
			RatingCount: &count,
			MeanRating:  &mean,
		},
		{Title: "Game Night", URL: "https://play.google.com/store/apps/details?id=night"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json": FormatJSON, "JSON": FormatJSON, "": FormatJSON,
		"jsonl": FormatJSONL, "yaml": FormatYAML, "yml": FormatYAML, "xlsx": FormatXLSX,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleItems()))

	assert.Contains(t, buf.String(), "Acme & Sons", "html characters stay unescaped")
	assert.Contains(t, buf.String(), `"category": null`)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.EqualValues(t, 12345, decoded[0]["rating_count"])
	assert.Nil(t, decoded[1]["author"])
}

func TestWrite_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWrite_JSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSONL, sampleItems()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		assert.Contains(t, m, "last_updated")
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleItems()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Cool Game", decoded[0]["title"])
	assert.Equal(t, 12345, decoded[0]["rating_count"])
	v, ok := decoded[1]["description"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestWrite_XLSXNeedsFile(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatXLSX, sampleItems())
	assert.True(t, errors.Is(err, ErrNeedsFile))
}

func TestWriteFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.xlsx")
	require.NoError(t, WriteFile(path, FormatXLSX, sampleItems()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	rows := f.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0].Cells[0].String())
	assert.Equal(t, "Cool Game", rows[1].Cells[0].String())
	assert.Equal(t, "Acme & Sons", rows[1].Cells[2].String())
	assert.Equal(t, "12345", rows[1].Cells[5].String())
	assert.Equal(t, "Game Night", rows[2].Cells[0].String())
}

func TestWriteFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	require.NoError(t, WriteFile(path, FormatJSON, sampleItems()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []model.Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleItems(), decoded)
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "apps.json"), FormatJSON, nil)
	assert.Error(t, err)
}
