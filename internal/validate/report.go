package validate

import "sort"

// Result is the outcome of the value-level validation pass.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Report is the tools/validate response body. It is computed fresh per
// request and never persisted.
type Report struct {
	ToolName       string         `json:"toolName"`
	RequiredParams []string       `json:"requiredParams"`
	ProvidedParams []string       `json:"providedParams"`
	MissingParams  []string       `json:"missingParams"`
	Categorization Categorization `json:"categorization"`
	Validation     Result         `json:"validation"`
	Confidence     int            `json:"confidence"`
}

// BuildReport computes a validation report for one call. Required parameter
// order follows the schema declaration; provided parameters are the argument
// keys carrying non-empty, non-null values.
func BuildReport(toolName string, required []string, args, context map[string]interface{}, rules RuleSet) Report {
	provided := make([]string, 0, len(args))
	for name, value := range args {
		if hasValue(value) {
			provided = append(provided, name)
		}
	}
	sort.Strings(provided)

	missing := make([]string, 0)
	for _, name := range required {
		if !hasValue(args[name]) {
			missing = append(missing, name)
		}
	}

	// Type checking of provided values against the schema is reserved for a
	// future pass; today only missing required parameters are reported.
	errs := []string{}

	isValid := len(missing) == 0 && len(errs) == 0
	confidence := 0
	if isValid {
		confidence = 100
	}

	return Report{
		ToolName:       toolName,
		RequiredParams: append([]string{}, required...),
		ProvidedParams: provided,
		MissingParams:  missing,
		Categorization: rules.Categorize(missing, context),
		Validation:     Result{IsValid: isValid, Errors: errs},
		Confidence:     confidence,
	}
}
