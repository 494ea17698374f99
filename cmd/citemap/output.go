package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/search"
)

const (
	titleColumnWidth     = 60
	searchTimeResolution = 10 * time.Millisecond
)

// renderResult writes a search result in the requested format.
func renderResult(w io.Writer, result *search.Result, format string) error {
	switch format {
	case "table":
		renderTable(w, result)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		out, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return errors.NewValidationError("output", format, "must be table, json or yaml")
	}
}

func renderTable(w io.Writer, result *search.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Title", "Year", "Venue", "DOI", "Cited", "Sources"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: titleColumnWidth, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, rec := range result.Records {
		t.AppendRow(table.Row{
			i + 1,
			rec.Title,
			yearCell(rec),
			rec.Venue.Name,
			rec.PrimaryDOI,
			rec.CitationCount,
			strings.Join(rec.Provenance.ContributingSources, ","),
		})
	}
	t.Render()

	fmt.Fprintf(w, "%d results from %s in %s (%d duplicates removed)\n",
		result.Metadata.TotalResults,
		strings.Join(result.Metadata.SourcesSearched, ", "),
		result.Metadata.SearchTime.Round(searchTimeResolution),
		result.Metadata.DuplicatesRemoved)

	for _, srcErr := range result.Metadata.Errors {
		if srcErr.Source != "" {
			fmt.Fprintf(w, "warning: source %s failed: %s\n", srcErr.Source, srcErr.Message)
		} else {
			fmt.Fprintf(w, "warning: %s\n", srcErr.Message)
		}
	}
	for _, warning := range result.Metadata.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func yearCell(rec literature.Record) string {
	if rec.PublicationYear == 0 {
		return ""
	}
	return fmt.Sprintf("%d", rec.PublicationYear)
}
