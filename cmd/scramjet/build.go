package scramjet

import (
	"context"
	"fmt"
	"time"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/logging"
	"github.com/scramjet-deb/scramjet/pkg/pipeline"
	"github.com/scramjet-deb/scramjet/pkg/ui"
	"github.com/scramjet-deb/scramjet/pkg/ui/display"
	"github.com/scramjet-deb/scramjet/pkg/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// buildOptions are the flags of the commands that archive packages
type buildOptions struct {
	*globalOptions
	outputDir string
	jobs      int
}

func (o *buildOptions) overrides() map[string]any {
	if o.outputDir == "" {
		return nil
	}
	return map[string]any{"build.output_dir": o.outputDir}
}

// buildUnit loads the unit's configuration and builds it
func (o *buildOptions) buildUnit(ctx context.Context, unitDir string) (*pipeline.Result, error) {
	loaded, err := o.loadConfig(unitDir, o.overrides())
	if err != nil {
		return nil, err
	}
	p, err := newPipeline(&loaded.Config)
	if err != nil {
		return nil, err
	}
	return p.Build(ctx, unitDir)
}

func newBuildCmd(global *globalOptions) *cobra.Command {
	opts := &buildOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:     "build <unit>...",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jobs < 1 {
				return errors.New(errors.ErrInvalidInput, MsgErrJobs)
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			logger := logging.GetLogger("cmd.build")
			logger.Info().Strs("units", args).Int("jobs", opts.jobs).Msg("Starting build")

			results := make([]*pipeline.Result, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(opts.jobs)
			for i, unit := range args {
				g.Go(func() error {
					result, err := opts.buildUnit(ctx, unit)
					if err != nil {
						return err
					}
					results[i] = result
					return nil
				})
			}
			buildErr := g.Wait()

			for _, result := range results {
				if result == nil {
					continue
				}
				if err := renderer.RenderResult(display.FromResult("build", result)); err != nil {
					return err
				}
			}
			return buildErr
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", MsgFlagOutputDir)
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, MsgFlagJobs)
	return cmd
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "plan <unit>",
		Short:   MsgPlanShort,
		Long:    MsgPlanLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			loaded, err := opts.loadConfig(args[0], nil)
			if err != nil {
				return err
			}
			p, err := newPipeline(&loaded.Config)
			if err != nil {
				return err
			}
			result, err := p.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderer.RenderPlan(display.FromResult("plan", result))
		},
	}
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &buildOptions{globalOptions: global}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:     "watch <unit>...",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), opts, renderer, debounce, args)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", MsgFlagOutputDir)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

// runWatch builds every unit once and rebuilds on change until ctx ends.
// Failed rebuilds are reported and watching continues.
func runWatch(ctx context.Context, opts *buildOptions, renderer ui.Renderer, debounce time.Duration, units []string) error {
	build := func(ctx context.Context, dir string) error {
		result, err := opts.buildUnit(ctx, dir)
		if err != nil {
			_ = renderer.RenderError(err)
			return err
		}
		return renderer.RenderResult(display.FromResult("build", result))
	}

	w, err := watch.New(watch.Options{Debounce: debounce, Build: build}, units...)
	if err != nil {
		return err
	}

	for _, dir := range w.Units() {
		_ = w.Rebuild(ctx, dir)
	}
	if err := renderer.RenderMessage(fmt.Sprintf(MsgWatching, len(units))); err != nil {
		return err
	}
	return w.Run(ctx)
}
