package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvp-joe/depscout/internal/search"
	"github.com/mvp-joe/depscout/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report dependency usage and refresh it when the project changes",
		Long: `Watch prints the usage count of every declared dependency, then watches
package.json and the searched source files. Each change drops the cached
searches for the project, kills ripgrep processes still running for it and
prints a fresh report. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := openProject(ctx, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			out := cmd.OutOrStdout()
			refresh := func(ctx context.Context, changed []string) {
				if err := reportProject(ctx, p, out); err != nil && !search.IsObsolete(err) {
					p.logger.Error("report failed", "err", err)
				}
			}

			refresh(ctx, nil)

			fw, err := watcher.NewFileWatcher(p.root, watcher.Options{
				Extensions: p.cfg.Search.Extensions,
				Exclude:    p.cfg.Search.Exclude,
				Debounce:   debounce,
				Logger:     p.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", p.root, err)
			}

			p.logger.Info("watching for changes", "root", p.root)
			coord := watcher.NewWatchCoordinator(p.root, fw, p.svc, refresh, p.logger)
			if err := coord.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a change is reported")

	return cmd
}

// reportProject prints the usage summary of every declared dependency.
func reportProject(ctx context.Context, p *project, out io.Writer) error {
	m, ok, err := p.manifest()
	if err != nil || !ok {
		return err
	}
	usages, err := collectUsages(ctx, p.svc, p.root, p.declaredNames(m), newSearchProgress(nil, 0, true))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", nameColor(m.Path))
	printSummaries(out, usages)
	return nil
}
