package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lathe/internal/daemon"
	"lathe/internal/viewer"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "Show daemon and viewer state",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemon.Status
			if err := ctx.getJSON("/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			selected := status.Controller.Selected
			if selected == "" {
				selected = "-"
			}
			errorLine := "-"
			if status.Error.Active {
				errorLine = status.Error.Message
			}

			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"Session", status.SessionID},
				{"State", renderState(status.Controller.State)},
				{"Generation", fmt.Sprintf("%d", status.Controller.Generation)},
				{"Selected", selected},
				{"Error", errorLine},
				{"Viewport", fmt.Sprintf("%dx%d (canvas %d)", status.Viewport.Width, status.Viewport.Height, status.Viewport.CanvasHeight)},
				{"Job DB", status.JobDBPath},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func renderState(state viewer.State) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return string(state)
	}
	var color string
	switch state {
	case viewer.StateDisplaying:
		color = "\x1b[32m" // green
	case viewer.StateLoading:
		color = "\x1b[33m" // yellow
	case viewer.StateError:
		color = "\x1b[31m" // red
	default:
		return string(state)
	}
	return color + string(state) + "\x1b[0m"
}
