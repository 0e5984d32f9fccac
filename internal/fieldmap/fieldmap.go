// Package fieldmap translates JSON payloads between a native CLI's field
// vocabulary and GitHub's.
//
// A Table is an ordered list of key renames. The forward direction walks
// pairs first to last; the reverse direction walks them last to first with
// source and destination swapped, so multi-step renames (moving an object
// and then a key inside it) compose correctly both ways. Fields outside
// the table pass through untouched, as does any document shape the table
// does not speak about.
package fieldmap

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	shimerrors "github.com/octoshim/octoshim/internal/errors"
)

// Direction selects which way a Table maps.
type Direction int

const (
	// ToNative maps GitHub field names to the native CLI's names.
	ToNative Direction = iota
	// ToGitHub maps the native CLI's field names back to GitHub's.
	ToGitHub
)

// Pair renames one key. Src is the key as it appears when the pair runs in
// the ToNative order, after the pairs before it have applied; Dst is what
// it becomes. A single ".#." segment in both paths renames the key inside
// every element of an array.
type Pair struct {
	Src, Dst string
}

// Table is an ordered rename table. Immutable after construction; safe to
// share across goroutines.
type Table struct {
	pairs []Pair
}

// NewTable builds a Table from pairs in application order. It panics when
// only one side of a pair carries the ".#." wildcard: tables are static
// code, so a lopsided pair is a programmer error.
func NewTable(pairs ...Pair) *Table {
	for _, p := range pairs {
		if strings.Contains(p.Src, ".#.") != strings.Contains(p.Dst, ".#.") {
			panic("fieldmap: wildcard pair " + p.Src + " -> " + p.Dst + " is one-sided")
		}
	}
	return &Table{pairs: pairs}
}

// Apply maps every table key present in doc and returns the rewritten
// document. A top-level array is mapped element by element. Invalid JSON
// fails before any mutation.
func (t *Table) Apply(doc string, d Direction) (string, error) {
	if !gjson.Valid(doc) {
		return "", errors.Wrap(shimerrors.ErrMalformedInput, "mapping fields")
	}
	root := gjson.Parse(doc)
	if !root.IsArray() {
		return t.applyOne(doc, d)
	}
	out := doc
	for i, el := range root.Array() {
		mapped, err := t.applyOne(el.Raw, d)
		if err != nil {
			return "", err
		}
		out, err = sjson.SetRaw(out, strconv.Itoa(i), mapped)
		if err != nil {
			return "", errors.Wrapf(err, "rewriting element %d", i)
		}
	}
	return out, nil
}

func (t *Table) applyOne(doc string, d Direction) (string, error) {
	var err error
	if d == ToNative {
		for _, p := range t.pairs {
			if doc, err = rename(doc, p.Src, p.Dst); err != nil {
				return "", err
			}
		}
		return doc, nil
	}
	for i := len(t.pairs) - 1; i >= 0; i-- {
		p := t.pairs[i]
		if doc, err = rename(doc, p.Dst, p.Src); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// rename moves src to dst when src exists, expanding one ".#." wildcard
// over array elements.
func rename(doc, src, dst string) (string, error) {
	i := strings.Index(src, ".#.")
	if i < 0 {
		return renameKey(doc, src, dst)
	}
	j := strings.Index(dst, ".#.")
	srcParent, srcKey := src[:i], src[i+3:]
	dstParent, dstKey := dst[:j], dst[j+3:]
	arr := gjson.Get(doc, srcParent)
	if !arr.IsArray() {
		return doc, nil
	}
	n := len(arr.Array())
	for k := 0; k < n; k++ {
		idx := strconv.Itoa(k)
		var err error
		doc, err = renameKey(doc, srcParent+"."+idx+"."+srcKey, dstParent+"."+idx+"."+dstKey)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

func renameKey(doc, src, dst string) (string, error) {
	if src == dst {
		return doc, nil
	}
	v := gjson.Get(doc, src)
	if !v.Exists() {
		return doc, nil
	}
	out, err := sjson.SetRaw(doc, dst, v.Raw)
	if err != nil {
		return "", errors.Wrapf(err, "setting %s", dst)
	}
	out, err = sjson.Delete(out, src)
	if err != nil {
		return "", errors.Wrapf(err, "removing %s", src)
	}
	return out, nil
}

// Project builds a document holding exactly the requested top-level fields
// of doc, in sorted order with duplicates collapsed, using null for fields
// doc does not carry. A top-level array is projected element by element.
func Project(doc string, fields []string) (string, error) {
	if !gjson.Valid(doc) {
		return "", errors.Wrap(shimerrors.ErrMalformedInput, "projecting fields")
	}
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)

	root := gjson.Parse(doc)
	if !root.IsArray() {
		return projectObject(doc, sorted)
	}
	out := "[]"
	for i, el := range root.Array() {
		obj, err := projectObject(el.Raw, sorted)
		if err != nil {
			return "", err
		}
		out, err = sjson.SetRaw(out, "-1", obj)
		if err != nil {
			return "", errors.Wrapf(err, "projecting element %d", i)
		}
	}
	return out, nil
}

func projectObject(doc string, fields []string) (string, error) {
	out := "{}"
	prev := ""
	for _, f := range fields {
		if f == "" || f == prev {
			continue
		}
		prev = f
		raw := "null"
		if v := gjson.Get(doc, f); v.Exists() {
			raw = v.Raw
		}
		var err error
		out, err = sjson.SetRaw(out, f, raw)
		if err != nil {
			return "", errors.Wrapf(err, "projecting %s", f)
		}
	}
	return out, nil
}

// Query evaluates a small jq subset against doc and returns one output
// line per result: plain field access (".title", ".a.b"), array iteration
// (".[]", ".labels[].name"), and identity ("."). String results print
// without quotes; everything else prints as compact JSON. Expressions
// outside the subset are translation errors.
func Query(doc, expr string) ([]string, error) {
	if !gjson.Valid(doc) {
		return nil, errors.Wrap(shimerrors.ErrMalformedInput, "evaluating query")
	}
	expr = strings.TrimSpace(expr)
	if expr == "." {
		return []string{Compact(doc)}, nil
	}
	if !strings.HasPrefix(expr, ".") || strings.ContainsAny(expr, " \t|,(){}\"'") || strings.Count(expr, "[]") > 1 {
		return nil, errors.Wrapf(shimerrors.ErrTranslation, "unsupported --jq expression: %q", expr)
	}
	path := expr[1:]

	switch {
	case strings.HasSuffix(path, "[]"):
		base := strings.TrimSuffix(strings.TrimSuffix(path, "[]"), ".")
		arr := gjson.Parse(doc)
		if base != "" {
			arr = gjson.Get(doc, base)
		}
		if !arr.IsArray() {
			return nil, nil
		}
		var lines []string
		for _, el := range arr.Array() {
			lines = append(lines, renderResult(el))
		}
		return lines, nil

	case strings.Contains(path, "[]."):
		k := strings.Index(path, "[].")
		gpath := "#." + path[k+3:]
		if base := strings.TrimSuffix(path[:k], "."); base != "" {
			gpath = base + "." + gpath
		}
		results := gjson.Get(doc, gpath)
		if !results.IsArray() {
			return nil, nil
		}
		var lines []string
		for _, el := range results.Array() {
			lines = append(lines, renderResult(el))
		}
		return lines, nil

	default:
		v := gjson.Get(doc, path)
		if !v.Exists() {
			return []string{"null"}, nil
		}
		return []string{renderResult(v)}, nil
	}
}

func renderResult(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return Compact(v.Raw)
}

// Compact strips insignificant whitespace from a JSON document.
func Compact(doc string) string {
	return string(pretty.Ugly([]byte(doc)))
}

// Canonical renders doc in a normalized form for comparisons: object keys
// sorted, numbers kept verbatim, timestamps reduced to RFC 3339 UTC
// seconds, and the exact strings "true"/"false" read as booleans. Output
// documents are never canonicalized; mapped payloads keep their values
// byte for byte.
func Canonical(doc string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", errors.Wrap(shimerrors.ErrMalformedInput, "canonicalizing")
	}
	out, err := json.Marshal(normalize(v))
	if err != nil {
		return "", errors.Wrap(err, "canonicalizing")
	}
	return string(out), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case string:
		switch x {
		case "true":
			return true
		case "false":
			return false
		}
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t.UTC().Truncate(time.Second).Format(time.RFC3339)
		}
		return x
	default:
		return v
	}
}
