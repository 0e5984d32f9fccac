package translate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	shimerrors "github.com/octoshim/octoshim/internal/errors"
)

func TestApply_Rename(t *testing.T) {
	rs := NewRuleSet(NoPositionals, Rename("--body", "--description", "-b"))

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"long form", []string{"--body", "hello"}, []string{"--description", "hello"}},
		{"inline value", []string{"--body=hello"}, []string{"--description", "hello"}},
		{"short alias", []string{"-b", "hello"}, []string{"--description", "hello"}},
		{"value starting with dash", []string{"--body", "-stays"}, []string{"--description", "-stays"}},
		{"empty inline value", []string{"--body="}, []string{"--description", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rs.Apply(Input{Args: tt.args})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(res.Args, tt.want) {
				t.Errorf("Apply() args = %v, want %v", res.Args, tt.want)
			}
		})
	}
}

func TestApply_PassBool(t *testing.T) {
	rs := NewRuleSet(NoPositionals, PassBool("--web", "-w"))

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{"plain", []string{"--web"}, []string{"--web"}, false},
		{"alias", []string{"-w"}, []string{"--web"}, false},
		{"explicit true", []string{"--web=true"}, []string{"--web"}, false},
		{"explicit false", []string{"--web=false"}, nil, false},
		{"junk value", []string{"--web=maybe"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rs.Apply(Input{Args: tt.args})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Apply() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(res.Args, tt.want) {
				t.Errorf("Apply() args = %v, want %v", res.Args, tt.want)
			}
		})
	}
}

func TestApply_SplitList(t *testing.T) {
	rs := NewRuleSet(NoPositionals, SplitList("--add-label", "--label"))

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			"comma separated",
			[]string{"--add-label", "bug,urgent"},
			[]string{"--label", "bug", "--label", "urgent"},
		},
		{
			"repeated occurrences keep order",
			[]string{"--add-label", "bug", "--add-label", "urgent"},
			[]string{"--label", "bug", "--label", "urgent"},
		},
		{
			"spaces around commas",
			[]string{"--add-label", "bug, urgent ,p1"},
			[]string{"--label", "bug", "--label", "urgent", "--label", "p1"},
		},
		{
			"empty items skipped",
			[]string{"--add-label", "bug,,"},
			[]string{"--label", "bug"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rs.Apply(Input{Args: tt.args})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(res.Args, tt.want) {
				t.Errorf("Apply() args = %v, want %v", res.Args, tt.want)
			}
		})
	}
}

func TestApply_ValueSwitch(t *testing.T) {
	rs := NewRuleSet(NoPositionals, ValueSwitch("--state", map[string]string{
		"open":   "",
		"closed": "--closed",
		"all":    "--all",
	}, "-s"))

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{"default value emits nothing", []string{"--state", "open"}, nil, false},
		{"mapped to flag", []string{"--state", "closed"}, []string{"--closed"}, false},
		{"mapped to other flag", []string{"-s", "all"}, []string{"--all"}, false},
		{"unknown value", []string{"--state", "merged"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rs.Apply(Input{Args: tt.args})
			if tt.wantErr {
				if !errors.Is(err, shimerrors.ErrTranslation) {
					t.Fatalf("Apply() error = %v, want ErrTranslation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(res.Args, tt.want) {
				t.Errorf("Apply() args = %v, want %v", res.Args, tt.want)
			}
		})
	}
}

func TestApply_ValueFunc(t *testing.T) {
	addHash := func(v string) (string, error) {
		if strings.HasPrefix(v, "#") {
			return v, nil
		}
		return "#" + v, nil
	}
	rs := NewRuleSet(NoPositionals, ValueFunc("--color", "--color", addHash, "-c"))

	res, err := rs.Apply(Input{Args: []string{"--color", "d73a4a"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := []string{"--color", "#d73a4a"}
	if !reflect.DeepEqual(res.Args, want) {
		t.Errorf("Apply() args = %v, want %v", res.Args, want)
	}
}

func TestApply_FileOrStdin(t *testing.T) {
	rs := NewRuleSet(NoPositionals, FileOrStdin("--body-file", "--description-file", "-F"))

	t.Run("plain path passes through", func(t *testing.T) {
		res, err := rs.Apply(Input{Args: []string{"--body-file", "notes.md"}})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		want := []string{"--description-file", "notes.md"}
		if !reflect.DeepEqual(res.Args, want) {
			t.Errorf("Apply() args = %v, want %v", res.Args, want)
		}
		if res.Cleanup != nil {
			t.Error("Apply() set Cleanup for a plain path")
		}
	})

	t.Run("stdin sentinel materializes a temp file", func(t *testing.T) {
		res, err := rs.Apply(Input{
			Args:           []string{"--body-file", "-"},
			Stdin:          strings.NewReader("desc"),
			StdinAvailable: true,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if len(res.Args) != 2 || res.Args[0] != "--description-file" {
			t.Fatalf("Apply() args = %v, want --description-file <tempfile>", res.Args)
		}
		path := res.Args[1]
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading temp file: %v", err)
		}
		if string(data) != "desc" {
			t.Errorf("temp file content = %q, want %q", data, "desc")
		}
		if res.Cleanup == nil {
			t.Fatal("Apply() returned nil Cleanup after materializing stdin")
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file still present after Cleanup: %v", err)
		}
	})

	t.Run("temp file removed when a later flag fails", func(t *testing.T) {
		before := countTempBodies(t)
		_, err := rs.Apply(Input{
			Args:  []string{"--body-file", "-", "--bogus"},
			Stdin: strings.NewReader("desc"),
		})
		if !errors.Is(err, shimerrors.ErrTranslation) {
			t.Fatalf("Apply() error = %v, want ErrTranslation", err)
		}
		if after := countTempBodies(t); after != before {
			t.Errorf("temp files leaked: %d before, %d after", before, after)
		}
	})
}

func countTempBodies(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "octoshim-body-*"))
	if err != nil {
		t.Fatalf("globbing temp dir: %v", err)
	}
	return len(matches)
}

func TestApply_FileToValue(t *testing.T) {
	rs := NewRuleSet(NoPositionals, FileToValue("--body-file", "--message", "-F"))

	t.Run("file content becomes the value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "comment.md")
		if err := os.WriteFile(path, []byte("looks good"), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := rs.Apply(Input{Args: []string{"--body-file", path}})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		want := []string{"--message", "looks good"}
		if !reflect.DeepEqual(res.Args, want) {
			t.Errorf("Apply() args = %v, want %v", res.Args, want)
		}
	})

	t.Run("stdin sentinel reads the pipe", func(t *testing.T) {
		res, err := rs.Apply(Input{
			Args:           []string{"--body-file", "-"},
			Stdin:          strings.NewReader("from the pipe"),
			StdinAvailable: true,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		want := []string{"--message", "from the pipe"}
		if !reflect.DeepEqual(res.Args, want) {
			t.Errorf("Apply() args = %v, want %v", res.Args, want)
		}
	})

	t.Run("missing file is a translation error", func(t *testing.T) {
		_, err := rs.Apply(Input{Args: []string{"--body-file", filepath.Join(t.TempDir(), "absent.md")}})
		if !errors.Is(err, shimerrors.ErrTranslation) {
			t.Fatalf("Apply() error = %v, want ErrTranslation", err)
		}
	})
}

func TestApply_TokenFromStdin(t *testing.T) {
	rs := NewRuleSet(NoPositionals, TokenFromStdin("--with-token", "--token"))

	t.Run("token read and trimmed", func(t *testing.T) {
		res, err := rs.Apply(Input{
			Args:           []string{"--with-token"},
			Stdin:          strings.NewReader("glpat-secret123\n"),
			StdinAvailable: true,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		want := []string{"--token", "glpat-secret123"}
		if !reflect.DeepEqual(res.Args, want) {
			t.Errorf("Apply() args = %v, want %v", res.Args, want)
		}
	})

	t.Run("no piped stdin is a translation error", func(t *testing.T) {
		_, err := rs.Apply(Input{Args: []string{"--with-token"}, StdinAvailable: false})
		if !errors.Is(err, shimerrors.ErrTranslation) {
			t.Fatalf("Apply() error = %v, want ErrTranslation", err)
		}
		if !strings.Contains(err.Error(), "--with-token") {
			t.Errorf("error %q does not name the flag", err)
		}
	})
}

func TestApply_DropAndWarn(t *testing.T) {
	rs := NewRuleSet(NoPositionals,
		Drop("--reason", true),
		Drop("--yes", false, "-y"),
		DropWarn("--comment", true, "closing comments are not supported; the issue was closed without one", "-c"),
	)

	res, err := rs.Apply(Input{Args: []string{"--reason", "completed", "-y", "--comment", "done"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(res.Args) != 0 {
		t.Errorf("Apply() args = %v, want empty", res.Args)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "closed without one") {
		t.Errorf("Apply() warnings = %v, want one closing-comment warning", res.Warnings)
	}
}

func TestApply_Capture(t *testing.T) {
	rs := NewRuleSet(NoPositionals,
		Capture("--json", "json"),
		Capture("--jq", "jq", "-q"),
	)

	res, err := rs.Apply(Input{Args: []string{"--json", "number,title", "--json", "state", "-q", ".title"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(res.Args) != 0 {
		t.Errorf("Apply() args = %v, want empty", res.Args)
	}
	if got := res.Captured["json"]; got != "number,title,state" {
		t.Errorf("Captured[json] = %q, want %q", got, "number,title,state")
	}
	if got := res.Captured["jq"]; got != ".title" {
		t.Errorf("Captured[jq] = %q, want %q", got, ".title")
	}
}

func TestApply_UnknownFlag(t *testing.T) {
	rs := NewRuleSet(NoPositionals, PassBool("--web"))

	_, err := rs.Apply(Input{Args: []string{"--tracker"}})
	if !errors.Is(err, shimerrors.ErrTranslation) {
		t.Fatalf("Apply() error = %v, want ErrTranslation", err)
	}
	if !strings.Contains(err.Error(), "--tracker") {
		t.Errorf("error %q does not name the unknown flag", err)
	}
}

func TestApply_MissingValue(t *testing.T) {
	rs := NewRuleSet(NoPositionals, Rename("--title", "--title", "-t"))

	_, err := rs.Apply(Input{Args: []string{"--title"}})
	if !errors.Is(err, shimerrors.ErrTranslation) {
		t.Fatalf("Apply() error = %v, want ErrTranslation", err)
	}
	if !strings.Contains(err.Error(), "--title") {
		t.Errorf("error %q does not name the flag", err)
	}
}

func TestApply_RequiredFlag(t *testing.T) {
	rs := NewRuleSet(NoPositionals,
		Pass("--title", "-t"),
		Rename("--body", "--description", "-b"),
	).Require("--title")

	if _, err := rs.Apply(Input{Args: []string{"--body", "text"}}); !errors.Is(err, shimerrors.ErrTranslation) {
		t.Fatalf("Apply() without required flag: error = %v, want ErrTranslation", err)
	}

	res, err := rs.Apply(Input{Args: []string{"-t", "crash", "--body", "text"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := []string{"--title", "crash", "--description", "text"}
	if !reflect.DeepEqual(res.Args, want) {
		t.Errorf("Apply() args = %v, want %v", res.Args, want)
	}
}

func TestApply_Positionals(t *testing.T) {
	tests := []struct {
		name    string
		policy  Positionals
		args    []string
		want    []string
		wantErr string
	}{
		{
			name:   "positional passes through in place",
			policy: Positionals{Min: 1, Max: 1, Name: "issue number"},
			args:   []string{"42", "--web"},
			want:   []string{"42", "--web"},
		},
		{
			name:    "missing required positional",
			policy:  Positionals{Min: 1, Max: 1, Name: "issue number"},
			args:    []string{"--web"},
			wantErr: "issue number",
		},
		{
			name:    "extra positional rejected",
			policy:  Positionals{Min: 1, Max: 1, Name: "issue number"},
			args:    []string{"42", "43"},
			wantErr: "43",
		},
		{
			name:   "positional moved to a flag",
			policy: Positionals{Min: 1, Max: 1, Name: "label name", MoveToFlag: "--name"},
			args:   []string{"bug", "--web"},
			want:   []string{"--name", "bug", "--web"},
		},
		{
			name:   "optional positional absent",
			policy: Positionals{Min: 0, Max: 1, Name: "repository"},
			args:   []string{"--web"},
			want:   []string{"--web"},
		},
		{
			name:   "double dash ends flag parsing",
			policy: Positionals{Min: 0, Max: -1, Name: "argument"},
			args:   []string{"--", "--web", "plain"},
			want:   []string{"--web", "plain"},
		},
		{
			name:   "lone dash is a positional",
			policy: Positionals{Min: 0, Max: 1, Name: "argument"},
			args:   []string{"-"},
			want:   []string{"-"},
		},
		{
			name:    "flags-only command rejects positionals",
			policy:  NoPositionals,
			args:    []string{"stray"},
			wantErr: "stray",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRuleSet(tt.policy, PassBool("--web", "-w"))
			res, err := rs.Apply(Input{Args: tt.args})
			if tt.wantErr != "" {
				if !errors.Is(err, shimerrors.ErrTranslation) {
					t.Fatalf("Apply() error = %v, want ErrTranslation", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(res.Args, tt.want) {
				t.Errorf("Apply() args = %v, want %v", res.Args, tt.want)
			}
		})
	}
}

func TestApply_OrderPreserved(t *testing.T) {
	rs := NewRuleSet(Positionals{Min: 1, Max: 1, Name: "issue number"},
		SplitList("--add-label", "--label"),
		SplitList("--remove-label", "--unlabel"),
		Rename("--body", "--description", "-b"),
	)

	res, err := rs.Apply(Input{Args: []string{
		"7", "--add-label", "p1", "--remove-label", "p2", "--add-label", "p3",
	}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := []string{"7", "--label", "p1", "--unlabel", "p2", "--label", "p3"}
	if !reflect.DeepEqual(res.Args, want) {
		t.Errorf("Apply() args = %v, want %v", res.Args, want)
	}
}

func TestNewRuleSet_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRuleSet() did not panic on duplicate flag")
		}
	}()
	NewRuleSet(NoPositionals,
		Rename("--body", "--description"),
		Capture("--body", "body"),
	)
}

func TestRequire_PanicsOnUnknownFlag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Require() did not panic on unknown flag")
		}
	}()
	NewRuleSet(NoPositionals, PassBool("--web")).Require("--title")
}
