package doctor

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

// Fixer is implemented by checks that can repair what they found. Both
// methods only make sense after Run has populated the issue list.
type Fixer interface {
	// CanFix reports whether any found issue is repairable.
	CanFix() bool

	// Fix repairs every repairable issue and reports per-issue outcomes.
	Fix() []FixResult
}

// FixResult is the outcome of one attempted repair.
type FixResult struct {
	// Path is the file or directory the repair targeted.
	Path string

	// Fixed is true when the repair went through.
	Fixed bool

	// Description says what happened, in report wording.
	Description string

	// Error is the failure when Fixed is false.
	Error error
}

// secureFilePerm is the fallback target permission for config files.
const secureFilePerm os.FileMode = 0644

// secureDirPerm is the fallback target permission for config directories.
const secureDirPerm os.FileMode = 0755

// PermissionFixer repairs permission findings. PathPermissionCheck embeds
// it and hands over the issues after each run.
type PermissionFixer struct {
	issues []pathIssue
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}

// CanFix reports whether at least one issue is repairable.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable counts the repairable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix chmods every repairable path to its target permission.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, f.fixIssue(issue))
		}
	}
	return results
}

func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	target, err := targetPermFor(issue)
	if err != nil {
		result.Description = err.Error()
		result.Error = err
		return result
	}

	if err := os.Chmod(issue.Path, target); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", target)
	return result
}

// targetPermFor returns the permission a repair should set: the issue's
// own target when present (credential files want 0600), otherwise the
// default for its path type.
func targetPermFor(issue pathIssue) (os.FileMode, error) {
	if issue.TargetPerm != 0 {
		return issue.TargetPerm, nil
	}
	switch issue.Type {
	case "file":
		return secureFilePerm, nil
	case "directory":
		return secureDirPerm, nil
	default:
		return 0, errors.Newf("cannot fix unknown type: %s", issue.Type)
	}
}
