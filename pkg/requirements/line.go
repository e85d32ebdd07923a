package requirements

import (
	"regexp"
	"strings"

	"github.com/matzehuels/reqstack/pkg/errors"
)

// Line prefixes and markers recognized by Classify.
const (
	includeMarker  = "-r "
	editableMarker = "-e "
	eggMarker      = "#egg="
	vcsMarker      = "@git+"
	platformSep    = ";"
)

// Kind identifies how a requirement line is interpreted.
type Kind int

const (
	KindPlain Kind = iota
	KindEditable
	KindVCS
	KindInclude
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindEditable:
		return "editable"
	case KindVCS:
		return "vcs"
	case KindInclude:
		return "include"
	default:
		return "unknown"
	}
}

// Operator is a version comparison operator.
type Operator string

const (
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
	OpGreater      Operator = ">"
)

// operatorRE finds the leftmost operator. At a given position ">=" is tried
// before "==" and ">", so "foo>=1.0==2.0" splits on ">=".
var operatorRE = regexp.MustCompile(`>=|==|>`)

// Constraint is a version operator and the version string that follows it.
type Constraint struct {
	Op      Operator
	Version string
}

// String renders the constraint without a separator, e.g. ">=1.2".
func (c Constraint) String() string {
	return string(c.Op) + c.Version
}

// Line is one classified requirement line.
type Line struct {
	Raw         string      // Trimmed source text
	Kind        Kind        // How the line was interpreted
	Package     string      // Package identifier; empty for includes
	Constraint  *Constraint // Plain lines with an operator only
	Platform    string      // Text after the first ";" of the constraint
	HasPlatform bool        // Whether a ";" was present, even if Platform is empty
	Include     string      // Target path for includes

	Source string // File the line came from (set by Read)
	LineNo int    // 1-based line number in Source (set by Read)
}

// Classify interprets a single trimmed, non-empty, non-comment line.
//
// The only failure is an editable line with no usable "#egg=" name, or an
// include marker with no path; both return an INVALID_FORMAT error.
func Classify(line string) (Line, error) {
	l := Line{Raw: line}

	switch {
	case strings.HasPrefix(line, includeMarker):
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return l, errors.New(errors.ErrCodeInvalidFormat, "include without a path: %q", line)
		}
		l.Kind = KindInclude
		l.Include = fields[1]

	case strings.HasPrefix(line, editableMarker):
		parts := strings.SplitN(line, eggMarker, 3)
		if len(parts) < 2 {
			return l, errors.New(errors.ErrCodeInvalidFormat, "editable requirement without %s fragment: %q", eggMarker, line)
		}
		if parts[1] == "" {
			return l, errors.New(errors.ErrCodeInvalidFormat, "editable requirement with empty %s name: %q", eggMarker, line)
		}
		l.Kind = KindEditable
		l.Package = parts[1]

	case strings.Contains(line, vcsMarker):
		l.Kind = KindVCS
		l.Package = line

	default:
		l.Kind = KindPlain
		classifyPlain(&l, line)
	}

	return l, nil
}

func classifyPlain(l *Line, line string) {
	loc := operatorRE.FindStringIndex(line)
	if loc == nil {
		l.Package = strings.TrimSpace(line)
		return
	}

	l.Package = strings.TrimSpace(line[:loc[0]])
	op := Operator(line[loc[0]:loc[1]])
	rest := strings.TrimSpace(line[loc[1]:])

	version := rest
	if before, after, ok := strings.Cut(rest, platformSep); ok {
		version = strings.TrimSpace(before)
		l.Platform = strings.TrimSpace(after)
		l.HasPlatform = true
	}
	l.Constraint = &Constraint{Op: op, Version: version}
}
