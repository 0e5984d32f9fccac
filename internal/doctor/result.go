// Package doctor implements environment diagnostics for the shim: config
// discovery and syntax, file permissions, the native CLI, and the ambient
// env vars that change provider behavior.
package doctor

// Severity classifies a check outcome. The zero value is a pass.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

// String returns the lowercase label used in report output.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// CheckResult is the outcome of one diagnostic check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details carries check-specific context, keyed per check.
	Details map[string]any `json:"details,omitempty"`

	// Fixable marks issues the fix flow can repair automatically.
	Fixable bool `json:"fixable,omitempty"`

	// FixHint tells the user how to resolve the issue by hand.
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) count(sev Severity) {
	switch sev {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	case SeverityError:
		s.Errors++
	}
}
