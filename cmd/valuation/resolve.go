package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/godilite/valuation-server/internal/industry"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the industry multiple for a code or description",
	Long: `Resolve walks the industry fallback chain and prints the multiple with
its provenance.

Examples:
  valuation resolve --code 541511 --score 4.2
  valuation resolve --description "landscaping" --score 2.5`,
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.String("code", "", "industry classification code")
	f.String("description", "", "free-text industry description")
	f.Float64("score", 3, "average performance score (1-5)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("code")
	desc, _ := cmd.Flags().GetString("description")
	score, _ := cmd.Flags().GetFloat64("score")

	table, err := industry.Load(cfg.Reference.MultiplesPath)
	if err != nil {
		return eris.Wrap(err, "load reference data")
	}

	res := industry.NewResolver(table).Resolve(industry.Context{Code: code, Description: desc}, score)
	return writeJSON(cmd.OutOrStdout(), res)
}
