package compose

import (
	"strings"

	"go.uber.org/zap"
)

// Acceptance is one accepted_warnings declaration.
type Acceptance struct {
	Code   string
	Match  string
	Reason string
}

// eligible reports whether warnings of sev may be acknowledged.
func eligible(sev Severity) bool {
	return sev == Medium || sev == Low
}

// parseAcceptances reads the accepted_warnings list of doc. Malformed entries
// and entries for ineligible codes are dropped with a diagnostic. Codes the
// registry does not know are kept; they simply never match.
func parseAcceptances(doc map[string]any, reg Registry, log *zap.Logger) []Acceptance {
	list, _ := doc["accepted_warnings"].([]any)
	var out []Acceptance
	for i, raw := range list {
		entry, _ := raw.(map[string]any)
		code, _ := entry["code"].(string)
		match, _ := entry["match"].(string)
		if code == "" || match == "" {
			log.Warn("accepted_warnings entry missing 'code' or 'match', skipped", zap.Int("index", i))
			continue
		}
		reason, _ := entry["reason"].(string)
		if strings.TrimSpace(reason) == "" {
			log.Warn("accepted_warnings entry missing 'reason', skipped", zap.String("code", code))
			continue
		}
		if c, known := reg[code]; known && !eligible(c.Severity) {
			log.Warn("cannot accept code, ignored",
				zap.String("code", code), zap.String("severity", string(c.Severity)))
			continue
		}
		out = append(out, Acceptance{Code: code, Match: match, Reason: reason})
	}
	return out
}

// acknowledge downgrades every warning matched by an acceptance. The first
// matching acceptance wins. Only warnings still at an eligible severity are
// touched.
func acknowledge(ws []Warning, accs []Acceptance) int {
	n := 0
	for i := range ws {
		w := &ws[i]
		if !eligible(w.Severity) {
			continue
		}
		msg := strings.ToLower(w.Message)
		for _, a := range accs {
			if w.Code == a.Code && strings.Contains(msg, strings.ToLower(a.Match)) {
				w.Severity = Acknowledged
				w.Message += " [Accepted: " + a.Reason + "]"
				n++
				break
			}
		}
	}
	return n
}
