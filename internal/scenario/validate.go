// Package scenario validates and generates murder cases.
package scenario

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"gopkg.in/yaml.v3"
)

// SuspectCount is the number of suspects in every case.
const SuspectCount = 3

// ErrSchemaViolation is matched by every *ValidationError.
var ErrSchemaViolation = errors.NewSentinel("scenario schema violation")

// ValidationError names the offending field of a rejected scenario.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

func violation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func ptr[T any](v T) *T {
	return &v
}

func text() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"} //nolint:exhaustruct // schema literal
}

var scenarioSchema = &jsonschema.Schema{ //nolint:exhaustruct // schema literal
	Type: "object",
	Required: []string{
		"victim", "crime_location", "weapon", "motive", "atmosphere", "forensic_report", "suspects",
	},
	Properties: map[string]*jsonschema.Schema{
		"victim":         text(),
		"crime_location": text(),
		"weapon":         text(),
		"motive":         text(),
		"atmosphere":     text(),
		"dynamic_event":  {Type: "string"}, //nolint:exhaustruct // schema literal
		"forensic_report": { //nolint:exhaustruct // schema literal
			Type:  "array",
			Items: text(),
		},
		"suspects": { //nolint:exhaustruct // schema literal
			Type:     "array",
			MinItems: ptr(1),
			Items: &jsonschema.Schema{ //nolint:exhaustruct // schema literal
				Type: "object",
				Required: []string{
					"id", "name", "role", "guilty", "personality", "alibi", "secret", "initial_clue",
				},
				Properties: map[string]*jsonschema.Schema{
					"id":           {Type: "integer"}, //nolint:exhaustruct // schema literal
					"name":         text(),
					"role":         text(),
					"guilty":       {Type: "boolean"}, //nolint:exhaustruct // schema literal
					"personality":  text(),
					"alibi":        text(),
					"secret":       text(),
					"initial_clue": text(),
				},
			},
		},
	},
}

var resolvedSchema = func() *jsonschema.Resolved {
	resolved, err := scenarioSchema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolve scenario schema: %v", err))
	}
	return resolved
}()

// Validate parses raw JSON into a Scenario. Text around the outermost braces, such as markdown fences added by a
// model, is ignored. The returned error matches ErrSchemaViolation and is a *ValidationError.
func Validate(raw []byte) (*models.Scenario, error) {
	clean := strings.TrimSpace(string(raw))
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var instance any
	if err := json.Unmarshal([]byte(clean), &instance); err != nil {
		return nil, violation("$", "malformed JSON: "+err.Error())
	}
	return validateInstance(instance, []byte(clean))
}

// ValidateYAML parses a hand-authored YAML case file through the same rules as Validate.
func ValidateYAML(raw []byte) (*models.Scenario, error) {
	var instance any
	if err := yaml.Unmarshal(raw, &instance); err != nil {
		return nil, violation("$", "malformed YAML: "+err.Error())
	}
	// Round-trip through JSON so that the schema sees the same value types as for generated cases.
	asJSON, err := json.Marshal(instance)
	if err != nil {
		return nil, violation("$", "unsupported YAML value: "+err.Error())
	}
	return Validate(asJSON)
}

func validateInstance(instance any, raw []byte) (*models.Scenario, error) {
	if err := resolvedSchema.Validate(instance); err != nil {
		return nil, violation("$", err.Error())
	}

	var scenario models.Scenario
	if err := json.Unmarshal(raw, &scenario); err != nil {
		return nil, violation("$", err.Error())
	}
	if err := checkRules(scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// checkRules enforces what the schema cannot express.
func checkRules(s models.Scenario) error {
	if err := checkBlank("", []field{
		{"victim", s.Victim},
		{"crime_location", s.CrimeLocation},
		{"weapon", s.Weapon},
		{"motive", s.Motive},
		{"atmosphere", s.Atmosphere},
	}); err != nil {
		return err
	}
	if len(s.ForensicReport) == 0 {
		return violation("forensic_report", "must contain at least one fact")
	}
	for i, fact := range s.ForensicReport {
		if strings.TrimSpace(fact) == "" {
			return violation(fmt.Sprintf("forensic_report[%d]", i), "must not be blank")
		}
	}
	if len(s.Suspects) != SuspectCount {
		return violation("suspects", fmt.Sprintf("want %d suspects, got %d", SuspectCount, len(s.Suspects)))
	}

	var (
		ids    = map[int]bool{}
		names  = map[string]bool{strings.ToLower(strings.TrimSpace(s.Victim)): true}
		guilty = 0
	)
	for i, suspect := range s.Suspects {
		prefix := fmt.Sprintf("suspects[%d].", i)
		if suspect.ID < 0 || suspect.ID >= SuspectCount {
			return violation(prefix+"id", fmt.Sprintf("must be between 0 and %d", SuspectCount-1))
		}
		if ids[suspect.ID] {
			return violation(prefix+"id", fmt.Sprintf("duplicate id %d", suspect.ID))
		}
		ids[suspect.ID] = true

		if err := checkBlank(prefix, []field{
			{"name", suspect.Name},
			{"role", suspect.Role},
			{"personality", suspect.Personality},
			{"alibi", suspect.Alibi},
			{"secret", suspect.Secret},
			{"initial_clue", suspect.InitialClue},
		}); err != nil {
			return err
		}

		key := strings.ToLower(strings.TrimSpace(suspect.Name))
		if names[key] {
			return violation(prefix+"name", "must differ from the victim and the other suspects")
		}
		names[key] = true

		if suspect.Guilty {
			guilty++
		}
	}
	if guilty != 1 {
		return violation("suspects", fmt.Sprintf("exactly one suspect must be guilty, got %d", guilty))
	}
	return nil
}

type field struct {
	name  string
	value string
}

func checkBlank(prefix string, fields []field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return violation(prefix+f.name, "must not be blank")
		}
	}
	return nil
}

// LogAttr describes a validation failure for logging.
func LogAttr(err error) slog.Attr {
	var v *ValidationError
	if errors.As(err, &v) {
		return slog.Group("violation", slog.String("field", v.Field), slog.String("reason", v.Reason))
	}
	return errors.SlogError(err)
}
