package scramjet

import (
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/scramjet-deb/scramjet/internal/version"
	"github.com/scramjet-deb/scramjet/pkg/cobrax/topics"
	"github.com/scramjet-deb/scramjet/pkg/config"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/logging"
	"github.com/scramjet-deb/scramjet/pkg/modules/catalog"
	"github.com/scramjet-deb/scramjet/pkg/pipeline"
	"github.com/scramjet-deb/scramjet/pkg/ui"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity    int
	configFile   string
	noUserConfig bool
	format       string
	ordering     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "scramjet",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	flags.BoolVar(&opts.noUserConfig, "no-user-config", false, MsgFlagNoUserConfig)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	flags.StringVar(&opts.ordering, "ordering", "", MsgFlagOrdering)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(ui.Formats))
		for i, f := range ui.Formats {
			names[i] = f.String()
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newModulesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		topicOpts := topics.Options{Renderer: topics.Markdown(0)}
		if err := topics.InitializeWithOptions(rootCmd, sub, topicOpts); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// loadConfig loads the configuration a build of unitDir sees. An empty
// unitDir skips the units root layer.
func (o *globalOptions) loadConfig(unitDir string, overrides map[string]any) (*config.Loaded, error) {
	loadOpts := config.Options{
		UserFile:       o.configFile,
		SkipUserConfig: o.noUserConfig,
		Overrides:      map[string]any{},
	}
	if unitDir != "" {
		abs, err := filepath.Abs(unitDir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid unit path %s", unitDir)
		}
		loadOpts.UnitsRoot = filepath.Dir(abs)
	}
	if o.ordering != "" {
		loadOpts.Overrides["build.ordering"] = o.ordering
	}
	for k, v := range overrides {
		loadOpts.Overrides[k] = v
	}
	return config.Load(loadOpts)
}

// newPipeline creates a pipeline running the bundled modules with cfg
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Modules:  catalog.Default(),
		Policy:   policy,
		Settings: cfg.Settings(),
		Archiver: cfg.Archiver(),
	}), nil
}

func (o *globalOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}
