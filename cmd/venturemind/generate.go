package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/venturemind/venturemind-backend/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one startup pack and print it",
	Long: `Generate runs the full pipeline once for --idea without starting a server
and prints the rendered markdown, or the composite result as JSON or YAML.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		idea, _ := cmd.Flags().GetString("idea")
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		orch, closeGen, err := newOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeGen()

		result, err := orch.ProduceStartupPack(cmd.Context(), idea)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), result, format)
	},
}

func init() {
	generateCmd.Flags().String("idea", "", "startup idea to expand")
	generateCmd.Flags().String("format", "markdown", "output format: markdown, json or yaml")
	_ = generateCmd.MarkFlagRequired("idea")

	rootCmd.AddCommand(generateCmd)
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "markdown", "md", "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want markdown, json or yaml)", format)
	}
}

func writeResult(w io.Writer, result models.CompositeResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, result.ReplyMarkdown)
		return err
	}
}
