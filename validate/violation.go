// Package validate implements the rule engines that check parsed proposals:
// schema validation, reference resolution, body link checking and spelling.
// Every engine accumulates violations and returns them; none aborts the run.
package validate

// Kind groups violations by the rule engine that produced them.
type Kind string

// Violation kinds.
const (
	KindMalformed Kind = "malformed-header"
	KindSchema    Kind = "schema"
	KindReference Kind = "reference"
	KindLink      Kind = "link"
	KindSpelling  Kind = "spelling"
	KindStyle     Kind = "style"
)

// Severity controls whether a violation fails the run.
type Severity string

// Violation severities. Only errors affect the exit code.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single recorded rule failure attached to a document.
type Violation struct {
	Kind     Kind     `json:"kind"`
	Rule     string   `json:"rule"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity"`
}

// Result holds all violations for one document. An empty violation list
// means the document passed.
type Result struct {
	Path       string      `json:"path"`
	ID         int         `json:"id,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// Passed reports whether the document has no error-severity violations.
func (r *Result) Passed() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Warnings counts warning-severity violations.
func (r *Result) Warnings() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Errors counts error-severity violations.
func (r *Result) Errors() int {
	return len(r.Violations) - r.Warnings()
}

func schemaViolation(rule, field, message string, line int) Violation {
	return Violation{
		Kind:     KindSchema,
		Rule:     rule,
		Field:    field,
		Message:  message,
		Line:     line,
		Severity: SeverityError,
	}
}

func referenceViolation(rule, field, message string, line int) Violation {
	return Violation{
		Kind:     KindReference,
		Rule:     rule,
		Field:    field,
		Message:  message,
		Line:     line,
		Severity: SeverityError,
	}
}
