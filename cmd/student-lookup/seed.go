package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-lookup/internal/config"
	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
	"github.com/aanand-mishra/student-lookup/internal/utils/response"
)

func newSeedCmd(loadConfig func() *config.Config) *cobra.Command {
	var student types.Student

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add one student record to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateStudent(student); err != nil {
				return err
			}

			cfg := loadConfig()

			a, err := newApp(cmd.Context(), cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := a.backend.Insert(cmd.Context(), store.Students, student)
			if err != nil {
				return fmt.Errorf("seed %s: %w", student.SID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (id %s)\n", student.SID, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&student.SID, "sid", "", "student ID used for lookups")
	cmd.Flags().StringVar(&student.Name, "name", "", "full name")
	cmd.Flags().StringVar(&student.College, "college", "", "college")
	cmd.Flags().StringVar(&student.Major, "major", "", "major")

	return cmd
}

// validateStudent checks the validate:"..." tags on types.Student and
// reports every failing field at once.
func validateStudent(s types.Student) error {
	err := validator.New().Struct(s)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		return errors.New(response.ValidationError(validateErrs).Error)
	}
	return err
}
