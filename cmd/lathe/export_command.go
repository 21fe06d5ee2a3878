package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Download the currently displayed model payload",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Filename string `json:"filename"`
				Payload  string `json:"payload"`
			}
			if err := ctx.getJSON("/api/export", &resp); err != nil {
				return err
			}

			payload, err := base64.StdEncoding.DecodeString(resp.Payload)
			if err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
				target = filepath.Join(cfg.Paths.ExportDir, resp.Filename)
			}

			if err := os.WriteFile(target, payload, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(payload), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (defaults to the export directory)")
	return cmd
}
