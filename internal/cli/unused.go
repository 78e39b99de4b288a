package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newUnusedCmd(opts *rootOptions) *cobra.Command {
	var (
		all        bool
		quiet      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "unused",
		Short: "List declared dependencies that are never imported",
		Long: `Unused searches the project for every dependency declared in package.json
under dependencies.node_paths and lists those with no imports.

Examples:
  depscout unused
  depscout unused --all   # show the usage count of every dependency`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := openProject(ctx, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			m, ok, err := p.manifest()
			if err != nil || !ok {
				return err
			}
			names := p.declaredNames(m)

			prog := newProgress(p.logger)
			bar := newSearchProgress(cmd.ErrOrStderr(), len(names), quiet || jsonOutput)
			usages, err := collectUsages(ctx, p.svc, p.root, names, bar)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			prog.done(fmt.Sprintf("Searched %d dependencies", len(names)))

			if !all {
				usages = unusedOnly(usages)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(usages, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(usages) == 0 {
				fmt.Fprintln(out, "No unused dependencies")
				return nil
			}
			printSummaries(out, usages)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every dependency with its usage count")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func unusedOnly(usages []depUsage) []depUsage {
	var unused []depUsage
	for _, u := range usages {
		if u.known() && len(u.Matches) == 0 {
			unused = append(unused, u)
		}
	}
	return unused
}
