package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synoet/bebop/codec"
	"github.com/synoet/bebop/gen"
	"github.com/synoet/bebop/lower"
	"github.com/synoet/bebop/schema"
)

var (
	verbose bool

	inputPath   string
	outputPath  string
	packageName string
)

func main() {
	root := &cobra.Command{
		Use:          "bebopc",
		Short:        "Schema compiler for the bebop wire format",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			gen.SetLogger(logger)
			codec.SetLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development logging")
	root.AddCommand(generateCmd(), checkCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render Go source for a schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := loadSchema(inputPath)
			if err != nil {
				return err
			}
			g, err := gen.NewGenerator(sch, gen.Options{Package: packageName})
			if err != nil {
				return err
			}
			src, err := g.Generate()
			if err != nil {
				return err
			}
			if outputPath == "" || outputPath == "-" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			return os.WriteFile(outputPath, src, 0o644)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "schema document to compile")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&packageName, "package", "p", "bebopgen", "package name for generated source")
	cmd.MarkFlagRequired("input")
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a schema document without generating output",
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := loadSchema(inputPath)
			if err != nil {
				return err
			}
			plans, err := lower.PlanSchema(sch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d definitions, %d records\n",
				inputPath, len(sch.Definitions), len(plans))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "schema document to validate")
	cmd.MarkFlagRequired("input")
	return cmd
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return schema.Load(data)
}
