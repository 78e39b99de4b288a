// Package cli implements the depscout command-line interface.
//
// Every command works on one project root (--root, default the working
// directory) and shares a single search session, so concurrent lookups of
// the same dependency run one ripgrep process.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by all commands.
type rootOptions struct {
	cfgFile string
	root    string
	verbose bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "depscout",
		Short: "Find where npm dependencies are imported",
		Long: `depscout searches a JavaScript/TypeScript project with ripgrep for every
import, require, re-export and dynamic import of a dependency.

It reports usages of a single dependency, dependencies declared in
package.json that are never imported, and imported packages that are not
declared.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is <root>/.depscout/config.yml)")
	root.PersistentFlags().StringVar(&opts.root, "root", "", "project root directory (default is the working directory)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newUsagesCmd(opts))
	root.AddCommand(newUnusedCmd(opts))
	root.AddCommand(newMissingCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
