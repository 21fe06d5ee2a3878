package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"lathe/internal/viewer"
)

func newElementsCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:         "elements",
		Short:       "List selectable elements and parts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/elements"
			if refresh {
				path += "?" + url.Values{"refresh": {"1"}}.Encode()
			}
			var resp struct {
				Options []viewer.Option `json:"options"`
			}
			if err := ctx.getJSON(path, &resp); err != nil {
				return err
			}

			rows := make([][]string, 0, len(resp.Options))
			for i, opt := range resp.Options {
				kind := "element"
				switch {
				case opt.Placeholder:
					kind = "placeholder"
				case opt.PartID != "":
					kind = "part"
				case !opt.Translatable():
					kind = "other"
				}
				rows = append(rows, []string{strconv.Itoa(i), opt.Label, kind, opt.ElementID, opt.PartID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Label", "Kind", "Element", "Part"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the directory from the CAD service")
	return cmd
}
