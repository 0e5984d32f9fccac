package doctor

import "time"

// Check is one diagnostic probe. Implementations must be safe to run more
// than once; the fix flow re-runs the whole set after repairs.
type Check interface {
	// Name is the stable identifier reported for this check.
	Name() string

	// Category groups related checks in report output.
	Category() string

	// Run executes the probe and reports its outcome.
	Run() *CheckResult
}

// Runner holds an ordered set of checks. Reports list results in
// registration order.
type Runner struct {
	checks []Check
}

// NewRunner returns an empty runner.
func NewRunner() *Runner {
	return &Runner{}
}

// AddCheck appends c to the run order.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes every registered check and aggregates the outcomes.
func (r *Runner) Run() *DoctorReport {
	report := &DoctorReport{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}
	for _, c := range r.checks {
		res := c.Run()
		report.Results = append(report.Results, res)
		report.Summary.count(res.Status)
	}
	return report
}

// DoctorReport is the full outcome of a diagnostic run.
type DoctorReport struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check ended at SeverityError.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check ended at SeverityWarning.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
