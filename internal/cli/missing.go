package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mvp-joe/depscout/internal/manifest"
	"github.com/spf13/cobra"
)

func newMissingCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List imported packages that package.json does not declare",
		Long: `Missing collects every package the project imports or requires and lists
those not declared under dependencies.node_paths. Node builtins and names
that are not valid npm package names are skipped.`,
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

			used, err := p.svc.UsedDependencies(ctx, p.root)
			if err != nil {
				return err
			}
			missing := missingDependencies(m, used, p.cfg.Dependencies.NodePaths)

			out := cmd.OutOrStdout()
			if jsonOutput {
				if missing == nil {
					missing = []string{}
				}
				data, err := json.MarshalIndent(missing, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(missing) == 0 {
				fmt.Fprintln(out, "No missing dependencies")
				return nil
			}
			for _, name := range missing {
				fmt.Fprintln(out, unusedColor(name))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// missingDependencies keeps the used names that are neither declared nor
// the package itself. A declared @types/x does not count as declaring x.
func missingDependencies(m *manifest.Manifest, used []string, nodePaths []string) []string {
	var missing []string
	for _, name := range used {
		if m.Declared(name, nodePaths) || name == m.Name || strings.HasPrefix(name, "@types/") {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}
