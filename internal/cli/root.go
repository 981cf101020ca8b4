// Package cli implements the headless klikctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"klik/internal/config"
	"klik/internal/providers/meetinginfo"
	"klik/internal/providers/pipeline"
	"klik/internal/usecase"
	"klik/internal/version"
)

type Dependencies struct {
	Controller  *usecase.SessionController
	Backend     *pipeline.Client
	MeetingInfo *meetinginfo.Client
	Config      config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "klikctl",
		Short: "Record meetings and process them through the Klik pipeline",
		Long:  "A headless client for the Klik processing backend: record audio, upload it, poll the run to completion and print the transcript, to-dos and meeting minutes.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewRunsCmd(deps))
	rootCmd.AddCommand(NewHealthCmd(deps))
	rootCmd.AddCommand(NewMeetingInfoCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
