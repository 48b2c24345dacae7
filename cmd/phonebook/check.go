package main

import (
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <number>",
		Short: "Report whether a number is already in the phone book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			module, err := e.phoneNumbers()
			if err != nil {
				return err
			}

			result, err := module.Service().Check(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}
