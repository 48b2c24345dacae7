package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var categoryID int64
	var mode string

	c := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import numbers from a txt, csv or xlsx file into one category",
		Long: "Reads the file (or stdin for '-'), extracts phone numbers and stores them " +
			"in the given category. Prints the per-item outcome as JSON.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name := args[0]
			var data []byte
			var err error
			if name == "-" {
				name = "stdin.txt"
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(name)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			module, err := e.phoneNumbers()
			if err != nil {
				return err
			}

			result, err := module.Service().ImportFile(ctx, filepath.Base(name), data, mode, categoryID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	c.Flags().Int64VarP(&categoryID, "category", "c", 0, "Category ID the numbers are stored in (required)")
	c.Flags().StringVarP(&mode, "mode", "m", "lines", "Extraction mode: lines or scan")

	_ = c.MarkFlagRequired("category")
	return c
}
