package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"klik/internal/output"
)

func NewHealthCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the processing backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			payload, err := deps.Backend.Health(ctx)
			if err != nil {
				return err
			}
			return printJSON(payload)
		},
	}
}

func NewRunsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List pipeline runs known to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := deps.Backend.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(payload)
		},
	}
}

func NewMeetingInfoCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "meeting-info",
		Short: "Fetch the next-meeting stub",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := deps.MeetingInfo.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("subject:   %s\n", info.Subject)
			fmt.Printf("initiator: %s\n", info.Initiator)
			fmt.Printf("time:      %s\n", info.FormattedTime())
			return nil
		},
	}
}

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := true

			if _, err := exec.LookPath(deps.Config.Audio.RecorderCommand); err != nil {
				f.SetupCheck(deps.Config.Audio.RecorderCommand, false, "not found in PATH")
				ok = false
			} else {
				f.SetupCheck(deps.Config.Audio.RecorderCommand, true, "installed")
			}

			f.SetupCheck("Backend URL", true, deps.Config.Backend.BaseURL)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if _, err := deps.Backend.Health(ctx); err != nil {
				f.SetupCheck("Backend health", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Backend health", true, "reachable")
			}

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func printJSON(payload map[string]any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
