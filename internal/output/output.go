// Package output renders CLI progress and results for humans.
package output

import (
	"fmt"
	"io"
	"time"

	"klik/internal/domain"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted() {
	fmt.Fprintf(f.w, "🎙️  Recording... press Enter or Ctrl+C to stop\n")
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) Processing(state domain.ProcessingState) {
	switch state.Status {
	case domain.ProcessingUploading:
		fmt.Fprintf(f.w, "⬆️  %s\n", state.Message)
	case domain.ProcessingRunning:
		fmt.Fprintf(f.w, "⚙️  [%3d%%] %s\n", state.Progress, state.Message)
	case domain.ProcessingCompleted:
		fmt.Fprintf(f.w, "✅ %s\n", state.Message)
	case domain.ProcessingError:
		fmt.Fprintf(f.w, "❌ %s\n", state.Message)
	}
}

func (f *Formatter) Results(results *domain.FrontendData) {
	if results == nil {
		return
	}

	fmt.Fprintf(f.w, "\n📋 Meeting minutes\n\n%s\n", results.MeetingMinutes.Content)

	if len(results.Todos.Items) > 0 {
		fmt.Fprintf(f.w, "\n☑️  To-dos\n")
		for _, todo := range results.Todos.Items {
			if todo.Assignee != "" {
				fmt.Fprintf(f.w, "  - %s (%s)\n", todo.Text, todo.Assignee)
			} else {
				fmt.Fprintf(f.w, "  - %s\n", todo.Text)
			}
		}
	}

	if len(results.Transcript.Segments) > 0 {
		fmt.Fprintf(f.w, "\n🗣️  Transcript (%d segments, %d speakers)\n",
			len(results.Transcript.Segments), results.Transcript.SpeakersDetected)
		for _, seg := range results.Transcript.Segments {
			fmt.Fprintf(f.w, "  [%7.1fs] %s: %s\n", seg.Start, seg.SpeakerLabel(), seg.Text)
		}
	}
}

func (f *Formatter) Snapshot(snapshot domain.StatusSnapshot) {
	fmt.Fprintf(f.w, "run:     %s\n", snapshot.RunID)
	fmt.Fprintf(f.w, "session: %s\n", snapshot.SessionID)
	fmt.Fprintf(f.w, "status:  %s\n", snapshot.Status)
	if snapshot.ExecutionTime > 0 {
		fmt.Fprintf(f.w, "elapsed: %.1fs\n", snapshot.ExecutionTime)
	}
	if snapshot.Error != "" {
		fmt.Fprintf(f.w, "error:   %s\n", snapshot.Error)
	}
	for _, line := range snapshot.Logs {
		fmt.Fprintf(f.w, "  | %s\n", line)
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
