package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/linabutler/ploidy/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "ploidy",
		Short: "Build typed IR from OpenAPI specs",
	}

	root.AddCommand(newInspectCmd())
	root.AddCommand(newValidateCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newInspectCmd() *cobra.Command {
	var input string
	var format string
	var dateTimeFormat string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Transform a spec and report its IR, type graph, and diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunInspect(cmd.OutOrStdout(), cli.InspectParams{
				Input:          input,
				Format:         format,
				DateTimeFormat: dateTimeFormat,
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or yaml")
	cmd.Flags().StringVar(&dateTimeFormat, "date-time-format", "", "Primitive for date-time schemas: rfc3339, unix-seconds, unix-ms, unix-us, unix-ns")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
