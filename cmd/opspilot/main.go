package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark47B/opspilot/internal/configs"
)

var (
	cfgFile string
	v       = configs.New()
)

var rootCmd = &cobra.Command{
	Use:   "opspilot",
	Short: "Workflow health analyzer",
	Long: `OpsPilot scores the delivery workflow of a repository and team.
It collects pull request, issue and chat signals, computes a 0-100 health score,
names the bottlenecks and drafts a standard operating procedure.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	},
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "DEBUG|INFO|WARNING|ERROR|CRITICAL")
	rootCmd.PersistentFlags().String("store", "", "report store: postgres|sqlite|s3")
	bindFlag(v, "LOG_LEVEL", rootCmd, "log-level")
	bindFlag(v, "STORE_DRIVER", rootCmd, "store")
}

// bindFlag binds a persistent flag to key; an unset flag leaves env and defaults in charge.
func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(name))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(reportsCmd())
	rootCmd.AddCommand(scoreCmd())
}
