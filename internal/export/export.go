// Package export serializes search results.
package export

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/appscout/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// ErrNeedsFile is returned when a binary format is written to a stream.
var ErrNeedsFile = eris.New("export: format requires an output file")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatJSON, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Write encodes items to w. Absent optional fields are written as null.
func Write(w io.Writer, format Format, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return eris.Wrap(enc.Encode(items), "export: encode json")
	case FormatJSONL:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, it := range items {
			if err := enc.Encode(it); err != nil {
				return eris.Wrap(err, "export: encode jsonl")
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return eris.Wrap(enc.Close(), "export: close yaml")
	case FormatXLSX:
		return ErrNeedsFile
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// WriteFile encodes items into the file at path, replacing it.
func WriteFile(path string, format Format, items []model.Item) error {
	if format == FormatXLSX {
		return writeXLSX(path, items)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := Write(f, format, items); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

var xlsxHeader = []string{
	"Title", "URL", "Author", "Category", "Description",
	"Rating Count", "Mean Rating", "Last Updated",
}

func writeXLSX(path string, items []model.Item) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("apps")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, it := range items {
		row := sheet.AddRow()
		row.AddCell().SetString(it.Title)
		row.AddCell().SetString(it.URL)
		row.AddCell().SetString(model.StringOrEmpty(it.Author))
		row.AddCell().SetString(model.StringOrEmpty(it.Category))
		row.AddCell().SetString(model.StringOrEmpty(it.Description))
		count := row.AddCell()
		if it.RatingCount != nil {
			count.SetInt(*it.RatingCount)
		}
		mean := row.AddCell()
		if it.MeanRating != nil {
			mean.SetFloat(*it.MeanRating)
		}
		row.AddCell().SetString(model.StringOrEmpty(it.LastUpdated))
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
