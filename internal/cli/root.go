package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subko/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subko",
	Short: "Translate English SRT subtitles into Korean with an LLM",
	Long: `Subko translates English SubRip (.srt) subtitles into Korean.

Cues are sent to the model in small batches and the translated text is
written back into the original timing, producing <name>_kor.srt.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose).With("run_id", uuid.NewString())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/subko/config.toml)")
}
