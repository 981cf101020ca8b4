package cli

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"klik/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record audio and process it through the pipeline",
		Long:  "Start a microphone recording, stop it with Enter or Ctrl+C, then upload the audio and poll the pipeline run until it finishes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)

			// The session context deliberately ignores Ctrl+C: the first
			// interrupt stops the recording, it must not cancel the
			// upload and poll that follow.
			ctx := context.Background()
			started := time.Now()

			if err := deps.Controller.StartRecording(ctx); err != nil {
				return err
			}
			f.RecordingStarted()

			waitForStopSignal()
			f.RecordingStopped(time.Since(started))

			results, err := deps.Controller.StopAndProcess(ctx)
			if err != nil {
				return err
			}

			f.Results(results)
			return nil
		},
	}
}

// waitForStopSignal returns when the user presses Enter or sends SIGINT.
func waitForStopSignal() {
	enter := make(chan struct{})
	go func() {
		reader := bufio.NewReader(os.Stdin)
		_, _ = reader.ReadString('\n')
		close(enter)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	select {
	case <-enter:
	case <-interrupt:
	}
}
