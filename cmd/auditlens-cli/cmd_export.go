package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		filters    filterFlags
		format     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching activity logs to a JSON or CSV file",
		Long: `Download up to 10,000 matching activity logs, newest first. The server
records each export as a data_export event attributed to the configured actor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("--type must be json or csv")
			}
			f, err := filters.build()
			if err != nil {
				return err
			}

			file, err := apiClient.Logs.Export(cmd.Context(), f, format)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if outputPath == "-" {
				_, err = os.Stdout.Write(file.Body)
				return err
			}
			if outputPath == "" {
				outputPath = file.Filename
			}
			if outputPath == "" {
				outputPath = "activity-logs." + format
			}

			if err := os.WriteFile(outputPath, file.Body, 0o600); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", file.RecordCount, outputPath)
			if file.Truncated {
				fmt.Fprintln(os.Stderr, "Warning: more records matched than the export cap; narrow the filters to get the rest.")
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "type", "json", "Export format: json|csv")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: server-suggested name, use - for stdout)")
	return cmd
}
