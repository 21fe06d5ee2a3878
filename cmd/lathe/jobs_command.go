package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lathe/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "jobs",
		Short:       "List translation job history",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Jobs []jobs.Record `json:"jobs"`
			}
			if err := ctx.getJSON("/api/jobs", &resp); err != nil {
				return err
			}

			rows := make([][]string, 0, len(resp.Jobs))
			for _, record := range resp.Jobs {
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					record.TranslationID,
					record.Label,
					string(record.Status),
					record.ErrorMessage,
					record.UpdatedAt.Local().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Translation", "Label", "Status", "Error", "Updated"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}
