package gitlab

import (
	"strings"

	"github.com/octoshim/octoshim/internal/translate"
)

// Rule sets for the supported gh surface, one per registered command.
// Flags absent from a set are rejected as unsupported for that command,
// which is how label list refuses --search, --sort and --order.

var issueNumber = translate.Positionals{Min: 1, Max: 1, Name: "issue number"}

var authStatusRules = translate.NewRuleSet(translate.NoPositionals,
	translate.Pass("--hostname", "-h"),
)

var authLoginRules = translate.NewRuleSet(translate.NoPositionals,
	translate.TokenFromStdin("--with-token", "--token"),
	translate.Pass("--hostname", "-h"),
	translate.PassBool("--web", "-w"),
)

var issueViewRules = translate.NewRuleSet(issueNumber,
	translate.PassBool("--comments", "-c"),
	translate.PassBool("--web", "-w"),
	translate.Capture("--json", "json"),
	translate.Capture("--jq", "jq", "-q"),
	translate.Pass("--repo", "-R"),
)

var issueCreateRules = translate.NewRuleSet(translate.NoPositionals,
	translate.Pass("--title", "-t"),
	translate.Rename("--body", "--description", "-b"),
	translate.FileOrStdin("--body-file", "--description-file", "-F"),
	translate.SplitList("--label", "--label", "-l"),
	translate.SplitList("--assignee", "--assignee", "-a"),
	translate.Pass("--milestone", "-m"),
	translate.PassBool("--web", "-w"),
	translate.Drop("--json", true),
	translate.Drop("--jq", true, "-q"),
	translate.Pass("--repo", "-R"),
).Require("--title")

var issueEditRules = translate.NewRuleSet(issueNumber,
	translate.Pass("--title", "-t"),
	translate.Rename("--body", "--description", "-b"),
	translate.FileOrStdin("--body-file", "--description-file", "-F"),
	translate.SplitList("--add-label", "--label"),
	translate.SplitList("--remove-label", "--unlabel"),
	translate.SplitList("--add-assignee", "--assignee"),
	translate.SplitList("--remove-assignee", "--unassign"),
	translate.Pass("--milestone", "-m"),
	translate.Pass("--repo", "-R"),
)

var issueCommentRules = translate.NewRuleSet(issueNumber,
	translate.Rename("--body", "--message", "-b"),
	translate.FileToValue("--body-file", "--message", "-F"),
	translate.Pass("--repo", "-R"),
)

var issueCloseRules = translate.NewRuleSet(issueNumber,
	translate.DropWarn("--comment", true,
		"--comment has no native equivalent; the issue was closed without a comment", "-c"),
	translate.Drop("--reason", true, "-r"),
	translate.Pass("--repo", "-R"),
)

var issueReopenRules = translate.NewRuleSet(issueNumber,
	translate.DropWarn("--comment", true,
		"--comment has no native equivalent; the issue was reopened without a comment", "-c"),
	translate.Pass("--repo", "-R"),
)

var issueListRules = translate.NewRuleSet(translate.NoPositionals,
	translate.SplitList("--label", "--label", "-l"),
	translate.Pass("--assignee", "-a"),
	translate.Pass("--author", "-A"),
	translate.Pass("--search", "-S"),
	translate.ValueSwitch("--state", map[string]string{
		"open":   "",
		"closed": "--closed",
		"all":    "--all",
	}, "-s"),
	translate.Rename("--limit", "--per-page", "-L"),
	translate.Pass("--milestone", "-m"),
	translate.PassBool("--web", "-w"),
	translate.Capture("--json", "json"),
	translate.Capture("--jq", "jq", "-q"),
	translate.Pass("--repo", "-R"),
)

var repoViewRules = translate.NewRuleSet(
	translate.Positionals{Min: 0, Max: 1, Name: "repository"},
	translate.PassBool("--web", "-w"),
	translate.Pass("--branch", "-b"),
	translate.Capture("--json", "json"),
	translate.Capture("--jq", "jq", "-q"),
)

var labelCreateRules = translate.NewRuleSet(
	translate.Positionals{Min: 1, Max: 1, Name: "label name", MoveToFlag: "--name"},
	translate.ValueFunc("--color", "--color", hexColor, "-c"),
	translate.Pass("--description", "-d"),
	translate.DropWarn("--force", false,
		"--force has no native equivalent; an existing label is not replaced", "-f"),
)

var labelListRules = translate.NewRuleSet(translate.NoPositionals,
	translate.Rename("--limit", "--per-page", "-L"),
	translate.PassBool("--web", "-w"),
	translate.Capture("--json", "json"),
	translate.Capture("--jq", "jq", "-q"),
)

var labelEditRules = translate.NewRuleSet(
	translate.Positionals{Min: 1, Max: 1, Name: "label name", MoveToFlag: "--name"},
	translate.Rename("--name", "--new-name", "-n"),
	translate.ValueFunc("--color", "--color", hexColor, "-c"),
	translate.Pass("--description", "-d"),
)

var labelDeleteRules = translate.NewRuleSet(
	translate.Positionals{Min: 1, Max: 1, Name: "label name"},
	translate.Drop("--yes", false, "-y"),
)

// hexColor restores the leading "#" the gh vocabulary omits. glab
// validates the color itself.
func hexColor(v string) (string, error) {
	if v == "" || strings.HasPrefix(v, "#") {
		return v, nil
	}
	return "#" + v, nil
}
