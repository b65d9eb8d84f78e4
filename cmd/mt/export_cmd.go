package main

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every ticket as JSON or JSONL",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportFormat string
	exportOutput string
	exportZstd   bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", string(report.FormatJSON), "Output format (json, jsonl)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportZstd, "zstd", false, "Compress the output with zstd")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	opts := report.ExportOptions{Format: format, Zstd: exportZstd}
	rows := report.Rows(b, a.root)
	if exportOutput == "" {
		return report.Export(cmd.OutOrStdout(), rows, opts)
	}

	var buf bytes.Buffer
	if err := report.Export(&buf, rows, opts); err != nil {
		return err
	}
	if err := atomic.WriteFile(exportOutput, &buf); err != nil {
		return fmt.Errorf("write %s: %w", exportOutput, err)
	}
	return nil
}
