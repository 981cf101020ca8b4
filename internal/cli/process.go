package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"klik/internal/output"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Upload an existing audio file and wait for results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading audio file: %w", err)
			}

			results, err := deps.Controller.ProcessFile(cmd.Context(), audio, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			f.Results(results)
			return nil
		},
	}
}
