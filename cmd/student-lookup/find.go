package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-lookup/internal/config"
	"github.com/aanand-mishra/student-lookup/internal/lookup"
)

func newFindCmd(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "find <sid>",
		Short: "Look up one student ID and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			a, err := newApp(cmd.Context(), cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			st := a.ctrl.Submit(cmd.Context(), args[0])
			return printState(cmd.OutOrStdout(), st)
		},
	}
}

// printState writes the rendered state and returns the state's error so
// the exit status is non-zero for anything but a found student.
func printState(w io.Writer, st lookup.State) error {
	view := lookup.Render(st)

	if s := view.Student; s != nil {
		fmt.Fprintf(w, "Name:    %s\nCollege: %s\nMajor:   %s\n", s.Name, s.College, s.Major)
		return nil
	}

	if view.Banner != "" {
		fmt.Fprintln(w, view.Banner)
	}
	if err := st.Err(); err != nil {
		return err
	}
	return errors.New("lookup did not complete")
}
