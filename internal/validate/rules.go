// Package validate implements pre-flight parameter validation for tools:
// computing which required parameters are missing from a call and
// classifying each missing parameter by how it can be supplied.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
)

// Categorization partitions missing required parameters. Every missing
// parameter lands in exactly one bucket.
type Categorization struct {
	Resolvable  []string `json:"resolvable"`
	MustAskUser []string `json:"mustAskUser"`
	CanInfer    []string `json:"canInfer"`
}

// RuleSet is the declarative categorization rule table. New entity types are
// added by extending the table, not the dispatch logic.
type RuleSet struct {
	// Resolvable maps an identifier-style parameter name to the alternate
	// context fields it can be resolved from. The parameter is resolvable
	// when the context carries a value for at least one alternate.
	Resolvable map[string][]string `json:"resolvable"`

	// Inferable lists timestamp-like parameters the execution engine
	// defaults at call time.
	Inferable []string `json:"inferable"`
}

// DefaultRules returns the built-in rule table for the fieldgate domain.
func DefaultRules() RuleSet {
	return RuleSet{
		Resolvable: map[string][]string{
			"facilityId":  {"facilityCode", "facilityName", "code"},
			"code":        {"facilityCode"},
			"zoneId":      {"zoneCode", "zoneName"},
			"subjectId":   {"subjectCode", "tagNumber"},
			"detectionId": {"detectionRef"},
		},
		Inferable: []string{"detectedAt", "enteredAt", "exitedAt", "recordedAt", "timestamp"},
	}
}

// LoadRules reads a rule table from a JSON file, letting deployments extend
// the categorizer without a rebuild.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return rules, nil
}

// Categorize partitions missing parameters against the rule table and the
// caller-supplied context. Resolvable and inferable rules are checked first;
// everything else must be asked of the user.
func (rs RuleSet) Categorize(missing []string, context map[string]interface{}) Categorization {
	cat := Categorization{
		Resolvable:  []string{},
		MustAskUser: []string{},
		CanInfer:    []string{},
	}
	for _, param := range missing {
		switch {
		case rs.resolvableFrom(param, context):
			cat.Resolvable = append(cat.Resolvable, param)
		case rs.inferable(param):
			cat.CanInfer = append(cat.CanInfer, param)
		default:
			cat.MustAskUser = append(cat.MustAskUser, param)
		}
	}
	return cat
}

func (rs RuleSet) resolvableFrom(param string, context map[string]interface{}) bool {
	alternates, ok := rs.Resolvable[param]
	if !ok {
		return false
	}
	for _, alt := range alternates {
		if hasValue(context[alt]) {
			return true
		}
	}
	return false
}

func (rs RuleSet) inferable(param string) bool {
	for _, name := range rs.Inferable {
		if name == param {
			return true
		}
	}
	return false
}

// hasValue reports whether a parameter value counts as provided: present,
// non-null and not the empty string.
func hasValue(v interface{}) bool {
	return v != nil && v != ""
}
