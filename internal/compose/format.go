package compose

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	footerFmt = "\n\n---\n*Generated by [founder skills](https://github.com/lool-ventures/founder-skills)" +
		" by [lool ventures](https://lool.vc) — %s*\n"
	generatedBy = "**Generated by:** [founder skills](https://github.com/lool-ventures/founder-skills)" +
		" by [lool ventures](https://lool.vc) — %s\n"
)

var paramLabels = map[string]string{
	"customer_count":  "Customer Count",
	"arpu":            "ARPU",
	"serviceable_pct": "Serviceable %",
	"target_pct":      "Target Capture %",
	"industry_total":  "Industry Total",
	"segment_pct":     "Segment %",
	"share_pct":       "Market Share %",
	"tam":             "TAM",
	"sam":             "SAM",
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func humanizeParam(name string) string {
	if l, ok := paramLabels[name]; ok {
		return l
	}
	return titleCase(strings.ReplaceAll(name, "_", " "))
}

// fmtUSD abbreviates large amounts to one decimal with a B, M or K suffix.
func fmtUSD(v float64) string {
	switch {
	case v >= 1e9:
		return "$" + commaFixed(v/1e9, 1) + "B"
	case v >= 1e6:
		return "$" + commaFixed(v/1e6, 1) + "M"
	case v >= 1e3:
		return "$" + commaFixed(v/1e3, 1) + "K"
	}
	return "$" + commaFixed(v, 2)
}

// fmtNumber groups thousands and drops the fraction of whole numbers.
func fmtNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return commaFixed(v, 2)
}

// commaFixed formats v with prec decimals and grouped thousands.
func commaFixed(v float64, prec int) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', prec, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
	out := humanize.Comma(n)
	if frac != "" {
		out += "." + frac
	}
	if v < 0 && strings.Trim(s, "0.") != "" {
		out = "-" + out
	}
	return out
}

// num formats v without an exponent or trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// display renders a loosely typed JSON value, or fallback when absent.
func display(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	case float64:
		return num(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func mdSafe(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

// normStage folds case and separators: "Series-A" and "series a" are "series_a".
func normStage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func stageLabel(s string) string {
	return titleCase(strings.ReplaceAll(s, "_", " "))
}

func bracket(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

func methodLabel(approach string) string {
	if approach == "top_down" {
		return "Top-down"
	}
	return "Bottom-up"
}
