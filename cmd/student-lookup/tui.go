package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-lookup/internal/config"
	httpapi "github.com/aanand-mishra/student-lookup/internal/http"
	"github.com/aanand-mishra/student-lookup/internal/tui"
)

func newTUICmd(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Look up students in an interactive terminal screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			// The screen owns stdout, so logs go to a file.
			logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			a, err := newApp(cmd.Context(), cfg, logFile)
			if err != nil {
				return err
			}
			defer a.close()

			return tui.Run(a.ctrl, httpapi.Hint)
		},
	}
}
