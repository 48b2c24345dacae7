package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phonebook_backend/internal/categories"
	"phonebook_backend/internal/categories/service"
	"phonebook_backend/platform/validator"
)

func seedCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories",
		Long:  "Creates the built-in categories, or the ones listed in a YAML file. Existing names are skipped.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			seed := service.DefaultSeed()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer func() { _ = f.Close() }()

				if seed, err = service.ParseSeedFile(f); err != nil {
					return err
				}
			}

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			module := categories.NewModule(e.pool, e.bus, validator.New(), e.log)
			result, err := module.Service().Seed(ctx, seed)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML file with a categories list")
	return c
}
