// Package control holds the package metadata that modules contribute and
// renders the merged record as a DEBIAN/control file.
package control

import (
	"strconv"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
)

// Field is a control file key
type Field string

const (
	Package      Field = "package"
	Version      Field = "version"
	Architecture Field = "architecture"
	Maintainer   Field = "maintainer"
	Section      Field = "section"
	PreDepends   Field = "pre-depends"
	Depends      Field = "depends"
	Provides     Field = "provides"
	Conflicts    Field = "conflicts"
	Replaces     Field = "replaces"
	Description  Field = "description"
)

// Fields lists every known field in rendering order
var Fields = []Field{
	Package, Version, Architecture, Maintainer, Section,
	PreDepends, Depends, Provides, Conflicts, Replaces,
	Description,
}

// ParseField resolves a key name, case-insensitively, to a known field
func ParseField(key string) (Field, error) {
	want := Field(strings.ToLower(strings.TrimSpace(key)))
	for _, f := range Fields {
		if f == want {
			return f, nil
		}
	}
	return "", errors.Newf(errors.ErrConfigValid, "unknown control field %q", key).
		WithDetail("field", key)
}

// Title returns the key as written in a control file, e.g. Pre-Depends
func (f Field) Title() string {
	parts := strings.Split(string(f), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// Fragment is a set of values per field. Values keep insertion order and
// appear once.
type Fragment struct {
	values map[Field][]string
}

// NewFragment creates an empty fragment
func NewFragment() *Fragment {
	return &Fragment{values: make(map[Field][]string)}
}

// Add appends values to field, skipping empty strings and values already
// present
func (f *Fragment) Add(field Field, values ...string) {
	if f.values == nil {
		f.values = make(map[Field][]string)
	}
	existing := f.values[field]
	for _, v := range values {
		if v == "" || contains(existing, v) {
			continue
		}
		existing = append(existing, v)
	}
	if len(existing) > 0 {
		f.values[field] = existing
	}
}

// Set adds values to the field named key. Unknown keys are rejected.
func (f *Fragment) Set(key string, values ...string) error {
	field, err := ParseField(key)
	if err != nil {
		return err
	}
	f.Add(field, values...)
	return nil
}

// Values returns the values of field in insertion order
func (f *Fragment) Values(field Field) []string {
	return append([]string(nil), f.values[field]...)
}

// Empty reports whether the fragment carries no value at all
func (f *Fragment) Empty() bool {
	return len(f.values) == 0
}

// Merge unions other into f
func (f *Fragment) Merge(other *Fragment) {
	if other == nil {
		return
	}
	for _, field := range Fields {
		f.Add(field, other.values[field]...)
	}
}

// Merge combines the fragments, in order, with the package version
func Merge(version int, fragments ...*Fragment) *Fragment {
	merged := NewFragment()
	merged.Add(Version, strconv.Itoa(version))
	for _, frag := range fragments {
		merged.Merge(frag)
	}
	return merged
}

// Render writes the fragment in control file syntax, one "Key: a, b" line
// per non-empty field. Description is folded into a synopsis and an
// extended description; a line break in any other field is an error.
func (f *Fragment) Render() (string, error) {
	var sb strings.Builder
	for _, field := range Fields {
		values := f.values[field]
		if len(values) == 0 {
			continue
		}
		value := strings.Join(values, ", ")
		if field == Description {
			folded, err := foldDescription(value)
			if err != nil {
				return "", err
			}
			value = folded
		} else if strings.ContainsAny(value, "\r\n") {
			return "", errors.Newf(errors.ErrConfigValid, "control field %s cannot span lines", field.Title()).
				WithDetail("field", string(field))
		}
		sb.WriteString(field.Title())
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// foldDescription keeps the first line as the synopsis and indents the rest
// by one space, writing blank lines as " ."
func foldDescription(value string) (string, error) {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	if strings.Contains(value, "\r") {
		return "", errors.New(errors.ErrConfigValid, "description contains a carriage return").
			WithDetail("field", string(Description))
	}
	lines := strings.Split(strings.TrimRight(value, "\n"), "\n")
	if strings.TrimSpace(lines[0]) == "" {
		return "", errors.New(errors.ErrConfigValid, "description needs a synopsis on its first line").
			WithDetail("field", string(Description))
	}

	out := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			out = append(out, " .")
			continue
		}
		out = append(out, " "+line)
	}
	return strings.Join(out, "\n"), nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
