package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/transcriptkit/config"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/version"
)

type globalOptions struct {
	configFile string
	envFile    string
	verbose    bool

	cfg *config.AppConfig
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "transcriptkit",
		Short: "Speaker-aligned transcript assembly",
		Long: `transcriptkit turns speech-to-text chunks and speaker diarization
intervals into one time-ordered, speaker-attributed transcript.

It can assemble transcripts from JSON documents produced by any engine, or
drive the configured Whisper and Pyannote sidecars for recorded meetings.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: searched as config.yml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file (default: searched)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newAssembleCmd(opts))
	root.AddCommand(newMeetingCmd(opts))
	return root
}

func (o *globalOptions) load() error {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	logger.Init(cfg.Logging, cfg.Base.Name)
	o.cfg = cfg
	return nil
}
