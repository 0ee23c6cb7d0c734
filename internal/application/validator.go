package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/greenhouse/greenhouse-cli/internal/api"
)

// RequiredField is one required question: a label and the field names that
// answer it. Any one of Names satisfies the question.
type RequiredField struct {
	Label string   `json:"label"`
	Names []string `json:"names"`
}

// RequiredFields is a job's required-question schema in question order.
type RequiredFields []RequiredField

// Labels returns the question labels in order.
func (r RequiredFields) Labels() []string {
	labels := make([]string, len(r))
	for i, f := range r {
		labels[i] = f.Label
	}
	return labels
}

// MissingFieldsError lists every required question left unanswered.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "submission missing required answers for: " + strings.Join(e.Labels, ", ")
}

// IsMissingFields reports whether err is a *MissingFieldsError.
func IsMissingFields(err error) bool {
	var missing *MissingFieldsError
	return errors.As(err, &missing)
}

// HasRequiredValue reports whether any of names is present in fields with a
// value other than nil or the empty string. Zero values such as 0 or false
// count as answers.
func HasRequiredValue(fields api.Fields, names []string) bool {
	for _, name := range names {
		value, ok := fields.Get(name)
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			continue
		}
		return true
	}
	return false
}

// ValidateRequiredFields checks every required question and returns a single
// *MissingFieldsError naming all unanswered ones.
func ValidateRequiredFields(fields api.Fields, required RequiredFields) error {
	var missing []string
	for _, r := range required {
		if !HasRequiredValue(fields, r.Names) {
			missing = append(missing, r.Label)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Labels: missing}
	}
	return nil
}

type jobQuestions struct {
	Questions []struct {
		Label    string `json:"label"`
		Required bool   `json:"required"`
		Fields   []struct {
			Name string `json:"name"`
		} `json:"fields"`
	} `json:"questions"`
}

// RequiredFieldsFromJob derives the schema from a Job Board job payload
// fetched with questions included. Optional questions are skipped.
func RequiredFieldsFromJob(jobJSON []byte) (RequiredFields, error) {
	var job jobQuestions
	if err := json.Unmarshal(jobJSON, &job); err != nil {
		return nil, fmt.Errorf("decode job questions: %w", err)
	}
	required := RequiredFields{}
	for _, q := range job.Questions {
		if !q.Required {
			continue
		}
		names := make([]string, 0, len(q.Fields))
		for _, f := range q.Fields {
			names = append(names, f.Name)
		}
		required = append(required, RequiredField{Label: q.Label, Names: names})
	}
	return required, nil
}
