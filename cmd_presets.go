package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"status-viewer/catalog"
	"status-viewer/config"
	"status-viewer/preset"
	"status-viewer/storage"
)

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "presets",
		Aliases: []string{"filters"},
		Short:   "Manage saved filters in the configured storage",
	}
	cmd.AddCommand(newPresetsListCmd(opts))
	cmd.AddCommand(newPresetsSaveCmd(opts))
	cmd.AddCommand(newPresetsApplyCmd(opts))
	cmd.AddCommand(newPresetsDeleteCmd(opts))
	return cmd
}

// withPresets opens the configured storage for the duration of fn.
func withPresets(ctx context.Context, opts *rootOptions, fn func(*preset.Manager) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = newLogger(cfg.Log, true); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	kv, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()

	pm, err := preset.NewManager(ctx, kv,
		preset.WithLogger(logger),
		preset.WithResetMalformed(cfg.Storage.ResetMalformed))
	if err != nil {
		return err
	}
	return fn(pm)
}

func newPresetsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPresets(cmd.Context(), opts, func(pm *preset.Manager) error {
				snap := pm.List()
				out := cmd.OutOrStdout()
				if len(snap.Presets) == 0 {
					fmt.Fprintln(out, "No saved filters.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "INDEX\tNAME\tCATEGORY\tSEARCH")
				for i, p := range snap.Presets {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, p.Name, p.Filter.Category, p.Filter.Search)
				}
				return tw.Flush()
			})
		},
	}
}

func newPresetsSaveCmd(opts *rootOptions) *cobra.Command {
	var search, category string
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a filter under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			f := catalog.FilterState{Search: search, Category: c}
			return withPresets(cmd.Context(), opts, func(pm *preset.Manager) error {
				i, err := pm.Save(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %q at index %d\n", args[0], i)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search text")
	cmd.Flags().StringVar(&category, "category", string(catalog.CategoryAll), "status class: all, 1xx, 2xx, 3xx, 4xx or 5xx")
	return cmd
}

func newPresetsApplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply INDEX",
		Short: "Show the catalog through a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return withPresets(cmd.Context(), opts, func(pm *preset.Manager) error {
				f, err := pm.Apply(index)
				if err != nil {
					return err
				}
				printView(cmd.OutOrStdout(), catalog.Render(f))
				return nil
			})
		},
	}
}

func newPresetsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return withPresets(cmd.Context(), opts, func(pm *preset.Manager) error {
				snap := pm.List()
				if index < 0 || index >= len(snap.Presets) {
					return fmt.Errorf("index %d: %w", index, preset.ErrNotFound)
				}
				d := preset.Confirmed
				if !yes {
					fmt.Fprintf(cmd.OutOrStdout(), "Delete filter %q? [y/N] ", snap.Presets[index].Name)
					line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
						d = preset.Cancelled
					}
				}
				if d == preset.Cancelled {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				if err := pm.Delete(cmd.Context(), index, d, preset.AtRevision(snap.Revision)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted filter %q\n", snap.Presets[index].Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}
