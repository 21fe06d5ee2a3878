package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lathe/internal/viewer"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "select <index|label>",
		Short:       "Select an element to translate and display",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if index, err := strconv.Atoi(args[0]); err == nil {
				payload["option"] = index
			} else {
				payload["label"] = args[0]
			}

			var status viewer.Status
			if err := ctx.postJSON("/api/select", payload, &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch status.State {
			case viewer.StateIdle:
				fmt.Fprintln(out, "Selection cleared")
			default:
				fmt.Fprintf(out, "Selected %q (generation %d, state %s)\n",
					status.Selected, status.Generation, status.State)
			}
			return nil
		},
	}
}
