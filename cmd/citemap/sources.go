package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	citemap "github.com/citemap/citemap"
	"github.com/citemap/citemap/pkg/sources"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered search sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := citemap.New()
			if err != nil {
				return err
			}

			registered := make(map[sources.ID]bool)
			for _, id := range client.Sources() {
				registered[id] = true
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Source", "Registered"})
			for _, id := range sources.IDs() {
				status := "no"
				if registered[id] {
					status = "yes"
				}
				t.AppendRow(table.Row{id.String(), status})
			}
			t.Render()
			return nil
		},
	}
}
