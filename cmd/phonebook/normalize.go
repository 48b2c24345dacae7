package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"phonebook_backend/platform/config"
	"phonebook_backend/platform/phone"
)

func normalizeCmd() *cobra.Command {
	var single bool
	var asJSON bool

	c := &cobra.Command{
		Use:   "normalize [number...]",
		Short: "Validate and format numbers without a database",
		Long:  "Normalizes the given numbers, or one number per stdin line when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithoutDatabase()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			minDigits := cfg.GetPhoneMinDigits()
			if single {
				minDigits = cfg.GetPhoneSingleMinDigits()
			}
			policy, err := phone.NewPolicy(minDigits, cfg.GetPhoneMaxDigits())
			if err != nil {
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				if inputs, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			results := make([]normalizedRow, len(inputs))
			for i, raw := range inputs {
				results[i] = normalizeRow(policy, raw)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), results)
			}
			return printRows(cmd.OutOrStdout(), results)
		},
	}

	c.Flags().BoolVar(&single, "single", false, "Apply the stricter single-add digit bounds")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return c
}

type normalizedRow struct {
	Input     string        `json:"input"`
	Verdict   phone.Verdict `json:"verdict"`
	Formatted string        `json:"formatted_number,omitempty"`
	Region    string        `json:"region,omitempty"`
}

func normalizeRow(policy phone.Policy, raw string) normalizedRow {
	row := normalizedRow{Input: raw, Verdict: policy.Validate(raw)}
	if row.Verdict.Valid {
		row.Formatted = phone.Format(row.Verdict.Normalized)
		row.Region = phone.Region(row.Verdict.Normalized)
	}
	return row
}

func printRows(w io.Writer, rows []normalizedRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tREASON\tNORMALIZED\tFORMATTED\tREGION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Input, r.Verdict.Reason, r.Verdict.Normalized, r.Formatted, r.Region)
	}
	return tw.Flush()
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
