package main

import (
	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/validate"
)

var fundProfileCmd = &cobra.Command{
	Use:   "fund-profile",
	Short: "Validate a fund profile",
	Long: `Read a fund profile on stdin and write it back with a "validation" block.

An invalid profile is not a command failure: the output lists every error
under validation.errors and the command exits 0.`,
	Args: cobra.NoArgs,
	RunE: runFundProfile,
}

func init() {
	rootCmd.AddCommand(fundProfileCmd)
}

func runFundProfile(cmd *cobra.Command, args []string) error {
	doc, err := readObject(cmd)
	if err != nil {
		return err
	}
	out, _ := validate.FundProfile(doc)
	return writeJSON(cmd, out)
}
