// main is the entry point of the student-lookup application.
//
// STARTUP SEQUENCE (every subcommand):
//  1. Load configuration (.env, YAML file, environment)
//  2. Initialise the logger
//  3. Open the record store selected by store.backend
//  4. Build the lookup controller
//  5. Hand it to a presenter: web server, terminal UI, or a one-shot print
//
// RUNNING:
//
//	go run ./cmd/student-lookup serve --config=config/local.yaml
//	go run ./cmd/student-lookup tui
//	go run ./cmd/student-lookup find S202411132
//
// or with the environment variable:
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-lookup serve
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-lookup/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "student-lookup",
		Short:         "Look up a student's name, college and major by student ID",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration YAML file (or CONFIG_PATH)")

	loadConfig := func() *config.Config {
		return config.MustLoad(configPath)
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newTUICmd(loadConfig),
		newFindCmd(loadConfig),
		newSeedCmd(loadConfig),
	)

	return root
}
