// Command lobctl drives replay and fixture-generation workflows
// against the matching engine: it is a fixture/replay tool, not a
// latency benchmark or a dashboard. Replays are seed-addressed, so a
// run is reproduced by quoting its seed and count.
//
// Built with github.com/spf13/cobra and github.com/spf13/viper for
// command/config plumbing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lobctl",
		Short: "Replay and fixture tooling for the limit order book engine",
	}

	root.PersistentFlags().String("config", "", "config file (default: ./lobctl.yaml)")
	viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	cobra.OnInitialize(func() {
		if cfg := viper.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
		} else {
			viper.SetConfigName("lobctl")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(".")
		}
		viper.SetEnvPrefix("LOBCTL")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()
	})

	root.AddCommand(newGenCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newFixturesCmd())

	return root
}
