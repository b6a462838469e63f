package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yunseol/ingrid/internal/config"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ingrid",
		Short: "ingrid - conversational ingredient-retrieval assistant",
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")
	rootCmd.PersistentFlags().String("server", "", "server address for client commands")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newSessionsCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Default(), err
		}
		path = filepath.Join(home, ".config", "ingrid", "config.toml")
	}

	return config.LoadOrCreate(path)
}

func serverAddr(cmd *cobra.Command, cfg config.Config) string {
	if override, _ := cmd.Flags().GetString("server"); override != "" {
		return override
	}

	bind := cfg.Bind
	if len(bind) > 0 && bind[0] == ':' {
		return "http://127.0.0.1" + bind
	}

	return "http://" + bind
}
