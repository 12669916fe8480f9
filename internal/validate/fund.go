package validate

import (
	"fmt"
	"strings"
)

// Archetype roles. A fund profile carries exactly one partner per role.
var ArchetypeRoles = []string{"visionary", "operator", "analyst"}

// FundModes are the accepted fund profile modes.
var FundModes = []string{"generic", "fund_specific"}

// FundProfileShape is the shape every fund profile must satisfy.
var FundProfileShape = Shape{
	Required: []string{"fund_name", "mode", "thesis_areas", "check_size_range", "stage_focus", "archetypes", "portfolio"},
	Rules: []Rule{
		OneOf("mode", FundModes...),
		Array("thesis_areas", 1),
		NonEmptyArray("stage_focus"),
		NumericRange("check_size_range"),
		archetypeRule(),
		Entries("portfolio", "Portfolio entry", requireField("Portfolio entry", "name")),
		When(FieldEquals("mode", "fund_specific"), sourcesRule),
	},
}

// FundProfile validates a fund profile and returns a copy of it with a
// "validation" key added.
func FundProfile(doc map[string]any) (map[string]any, Result) {
	res := FundProfileShape.Validate(doc)
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["validation"] = res
	return out, res
}

func requireField(label, field string) EntryCheck {
	return func(i int, entry map[string]any) []string {
		if !Truthy(entry[field]) {
			return []string{fmt.Sprintf("%s %d: missing '%s' field", label, i, field)}
		}
		return nil
	}
}

// archetypeRule requires exactly three archetypes with distinct valid roles
// and a name each. The role set is tracked per document.
func archetypeRule() Rule {
	return func(doc map[string]any) []string {
		errs := Count("archetypes", "archetypes", len(ArchetypeRoles))(doc)
		seen := make(map[string]bool)
		check := func(i int, a map[string]any) []string {
			var errs []string
			role, _ := a["role"].(string)
			switch {
			case !contains(ArchetypeRoles, role):
				errs = append(errs, fmt.Sprintf("Archetype %d: invalid role '%s'. Must be one of: %s",
					i, display(a["role"]), strings.Join(sortedCopy(ArchetypeRoles), ", ")))
			case seen[role]:
				errs = append(errs, fmt.Sprintf("Archetype %d: duplicate role '%s'", i, role))
			default:
				seen[role] = true
			}
			if !Truthy(a["name"]) {
				errs = append(errs, fmt.Sprintf("Archetype %d: missing 'name' field", i))
			}
			return errs
		}
		return append(errs, Entries("archetypes", "Archetype", check)(doc)...)
	}
}

func sourcesRule(doc map[string]any) []string {
	arr, ok := doc["sources"].([]any)
	if !ok || len(arr) == 0 {
		return []string{"sources required for fund_specific mode (at least 1)"}
	}
	var errs []string
	for i, s := range arr {
		src, ok := s.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("Source %d must be an object", i))
			continue
		}
		if !Truthy(src["url"]) && !Truthy(src["title"]) {
			errs = append(errs, fmt.Sprintf("Source %d must have at least 'url' or 'title'", i))
		}
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
