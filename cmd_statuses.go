package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"status-viewer/catalog"
)

func newStatusesCmd() *cobra.Command {
	var search, category string
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "List catalog entries matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), catalog.Render(catalog.FilterState{Search: search, Category: c}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring of the code or message")
	cmd.Flags().StringVar(&category, "category", string(catalog.CategoryAll), "status class: all, 1xx, 2xx, 3xx, 4xx or 5xx")
	return cmd
}

func printView(w io.Writer, v catalog.View) {
	fmt.Fprintln(w, v.Summary)
	if v.Count == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tMESSAGE")
	for _, c := range v.Results {
		fmt.Fprintf(tw, "%d\t%s\n", c.Code, c.Message)
	}
	tw.Flush()
}
