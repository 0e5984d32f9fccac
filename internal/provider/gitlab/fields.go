package gitlab

import "github.com/octoshim/octoshim/internal/fieldmap"

// Field vocabulary, GitHub name to GitLab name, applied in order. The
// reverse direction walks the pairs backwards, which is what lets the
// user→author object move compose with the login→username rename inside
// the moved object. Fields with the same name on both sides (title, state,
// labels, timestamps) have no pair and pass through.

// issueTable covers issue payloads from view and list.
var issueTable = fieldmap.NewTable(
	fieldmap.Pair{Src: "number", Dst: "iid"},
	fieldmap.Pair{Src: "body", Dst: "description"},
	fieldmap.Pair{Src: "html_url", Dst: "web_url"},
	fieldmap.Pair{Src: "user", Dst: "author"},
	fieldmap.Pair{Src: "author.login", Dst: "author.username"},
	fieldmap.Pair{Src: "assignees.#.login", Dst: "assignees.#.username"},
	fieldmap.Pair{Src: "comments", Dst: "user_notes_count"},
)

// repoTable covers repository payloads from repo view. A repository's
// description keeps its name on both sides, so unlike issues it has no
// body pair.
var repoTable = fieldmap.NewTable(
	fieldmap.Pair{Src: "full_name", Dst: "path_with_namespace"},
	fieldmap.Pair{Src: "html_url", Dst: "web_url"},
)

// labelTable is empty: label fields share names on both sides and only
// projection and queries apply.
var labelTable = fieldmap.NewTable()
