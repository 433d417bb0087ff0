package validator

import "strings"

// FieldError describes one failed validation rule
type FieldError struct {
	Namespace string `json:"namespace"`
	Field     string `json:"field"`
	Tag       string `json:"tag"`
	Message   string `json:"message"`
}

// ValidationErrors is returned by Struct when one or more rules fail
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the field at namespace failed validation
func (ve ValidationErrors) Has(namespace string) bool {
	for _, fe := range ve {
		if fe.Namespace == namespace {
			return true
		}
	}
	return false
}
