package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newUsagesCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "usages <dependency>",
		Short: "List every import of a dependency",
		Long: `Usages searches the project for imports of one dependency and prints
each match as path:line:column followed by the import statement.

A leading @types/ is ignored, so "@types/react" reports imports of "react".

Examples:
  depscout usages lodash
  depscout usages @scope/pkg --root ./packages/web --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := openProject(ctx, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			prog := newProgress(p.logger)
			matches, err := p.svc.Usages(ctx, args[0], p.root)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			prog.done(fmt.Sprintf("Searched %s", args[0]))

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(matches, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			printMatches(out, p.root, matches)
			fmt.Fprintln(out, summarize(matches))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output matches as JSON")

	return cmd
}
