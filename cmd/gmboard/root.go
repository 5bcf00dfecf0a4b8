package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gmboard/internal/cli"
	"github.com/aretw0/gmboard/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gmboard",
	Short: "gmboard is a game master board for running scenarios with a language model",
	Long: `gmboard loads a directory of Markdown scenario documents, splits the steps
document into named steps and assists the game master with generated
narration, turn resolution, clues, rosters and clocks.

Without a subcommand it starts the interactive board (same as 'gmboard play').`,
	SilenceUsage: true,
	RunE:         runPlay,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", "", "Directory containing the scenario documents")
	flags.String("config", "", "Path to a YAML configuration file")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("provider", "", "Generation provider: gemini, openai or scripted")
	flags.String("script", "", "YAML script of responses for the scripted provider")
	flags.String("model", "", "Model name")
}

// loadConfig resolves defaults, the config file, the environment and finally
// the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("script") {
		cfg.Script, _ = flags.GetString("script")
		if !flags.Changed("provider") {
			cfg.Provider = config.ProviderScripted
		}
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Lookup("player") != nil && flags.Changed("player") {
		cfg.PlayerView, _ = flags.GetBool("player")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return cli.Play(cfg, cli.PlayOptions{
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: cli.IsInteractive(os.Stdin) && cli.IsInteractive(os.Stdout),
	})
}
