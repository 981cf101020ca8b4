package cli

import (
	"os"

	"github.com/spf13/cobra"

	"klik/internal/output"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Fetch the status of a pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := deps.Backend.FetchStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).Snapshot(snapshot)
			return nil
		},
	}
}
