package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

var (
	msStdin          bool
	msApproach       string
	msCurrency       string
	msIndustryTotal  float64
	msSegmentPct     float64
	msSharePct       float64
	msCustomerCount  float64
	msARPU           float64
	msServiceablePct float64
	msTargetPct      float64
	msGrowthRate     float64
	msYears          int
)

var marketSizeCmd = &cobra.Command{
	Use:   "market-size",
	Short: "Compute TAM/SAM/SOM",
	Long: `Compute market size top-down, bottom-up or both.

Top-down:  TAM = industry total, SAM = TAM x segment%, SOM = SAM x share%
Bottom-up: TAM = customers x ARPU, SAM = serviceable x ARPU, SOM = target x ARPU

With both approaches the TAMs are compared and a discrepancy above 30% is
flagged. Inputs come from flags, or from a JSON object on stdin with --stdin.

Examples:
  founder market-size --approach top-down --industry-total 5e9 --segment-pct 20 --share-pct 2
  founder market-size --stdin --pretty < inputs.json`,
	Args: cobra.NoArgs,
	RunE: runMarketSize,
}

func init() {
	f := marketSizeCmd.Flags()
	f.BoolVar(&msStdin, "stdin", false, "Read JSON input from stdin")
	f.StringVar(&msApproach, "approach", sizing.Both, "top-down, bottom-up or both")
	f.StringVar(&msCurrency, "currency", "USD", "Currency label")
	f.Float64Var(&msIndustryTotal, "industry-total", 0, "Total industry revenue")
	f.Float64Var(&msSegmentPct, "segment-pct", 0, "Target segment as % of TAM")
	f.Float64Var(&msSharePct, "share-pct", 0, "Expected market share as % of SAM")
	f.Float64Var(&msCustomerCount, "customer-count", 0, "Total potential customers")
	f.Float64Var(&msARPU, "arpu", 0, "Average revenue per customer")
	f.Float64Var(&msServiceablePct, "serviceable-pct", 0, "Serviceable customers as % of total")
	f.Float64Var(&msTargetPct, "target-pct", 0, "Target customers as % of serviceable")
	f.Float64Var(&msGrowthRate, "growth-rate", 0, "Annual growth rate %")
	f.IntVar(&msYears, "years", 0, "Years to project forward")
	rootCmd.AddCommand(marketSizeCmd)
}

// flagInput builds an Input from the flags that were set, so an unset flag
// is absent rather than zero.
func flagInput(cmd *cobra.Command) sizing.Input {
	in := sizing.Input{Approach: msApproach, Currency: msCurrency, Years: msYears}
	set := func(name string, v float64) *float64 {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return &v
	}
	in.IndustryTotal = set("industry-total", msIndustryTotal)
	in.SegmentPct = set("segment-pct", msSegmentPct)
	in.SharePct = set("share-pct", msSharePct)
	in.CustomerCount = set("customer-count", msCustomerCount)
	in.ARPU = set("arpu", msARPU)
	in.ServiceablePct = set("serviceable-pct", msServiceablePct)
	in.TargetPct = set("target-pct", msTargetPct)
	in.GrowthRate = set("growth-rate", msGrowthRate)
	return in
}

func runMarketSize(cmd *cobra.Command, args []string) error {
	var in sizing.Input
	if msStdin {
		if err := readInto(cmd, &in); err != nil {
			return err
		}
		if in.Currency == "" {
			in.Currency = msCurrency
		}
	} else {
		in = flagInput(cmd)
	}

	res, err := sizing.Calculate(in)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()
	for _, n := range res.Notes {
		log.Info(n, zap.String("approach", res.Approach))
	}
	return writeJSON(cmd, res)
}
