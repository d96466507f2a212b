package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexPrefix marks a textual pattern as a regular expression.
const RegexPrefix = "regex:"

// Class is the outcome of classifying a request path.
type Class int

const (
	// Protected paths require an authenticated session.
	Protected Class = iota
	// Public paths are served without a session.
	Public
	// Self paths are the gate's own control endpoints.
	Self
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case Public:
		return "public"
	case Self:
		return "self"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Pattern matches whole request paths.
type Pattern interface {
	Match(path string) bool
	String() string
}

// Literal matches a path on exact equality.
type Literal string

func (l Literal) Match(path string) bool { return string(l) == path }

func (l Literal) String() string { return string(l) }

// Regexp matches when the expression matches the entire path.
type Regexp struct {
	expr string
	re   *regexp.Regexp
}

// NewRegexp compiles expr anchored at both ends.
func NewRegexp(expr string) (*Regexp, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid path pattern %q: %w", expr, err)
	}
	return &Regexp{expr: expr, re: re}, nil
}

func (r *Regexp) Match(path string) bool { return r.re.MatchString(path) }

func (r *Regexp) String() string { return RegexPrefix + r.expr }

// ParsePattern reads `regex:<expr>` as a Regexp and anything else as a
// Literal.
func ParsePattern(s string) (Pattern, error) {
	if expr, ok := strings.CutPrefix(s, RegexPrefix); ok {
		return NewRegexp(expr)
	}
	return Literal(s), nil
}

// ParsePatterns parses each pattern in order. All invalid patterns are
// reported.
func ParsePatterns(patterns []string) ([]Pattern, error) {
	parsed := make([]Pattern, 0, len(patterns))
	var msgs []string
	for _, s := range patterns {
		p, err := ParsePattern(s)
		if err != nil {
			msgs = append(msgs, err.Error())
			continue
		}
		parsed = append(parsed, p)
	}
	if len(msgs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(msgs, ", "))
	}
	return parsed, nil
}

// Classify decides how path is treated. controlPaths must already carry the
// mount prefix. The first matching rule wins:
//  1. a control path is Self
//  2. a path outside every protected pattern is Public
//  3. a path matching a public pattern is Public
//  4. anything else is Protected
func Classify(path string, controlPaths []string, protected, public []Pattern) Class {
	for _, c := range controlPaths {
		if path == c {
			return Self
		}
	}
	if !matchesAny(path, protected) {
		return Public
	}
	if matchesAny(path, public) {
		return Public
	}
	return Protected
}

func matchesAny(path string, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// JoinPath prefixes p with the mount prefix. Neither a trailing slash on the
// prefix nor a missing leading slash on p change the result.
func JoinPath(prefix, p string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return prefix + p
}

// Matcher holds precompiled patterns and control paths relative to the
// mount prefix.
type Matcher struct {
	controlPaths []string
	protected    []Pattern
	public       []Pattern
}

// NewMatcher compiles the textual protected and public patterns.
func NewMatcher(controlPaths, protected, public []string) (*Matcher, error) {
	prot, err := ParsePatterns(protected)
	if err != nil {
		return nil, fmt.Errorf("protected paths: %w", err)
	}
	pub, err := ParsePatterns(public)
	if err != nil {
		return nil, fmt.Errorf("public paths: %w", err)
	}
	return &Matcher{
		controlPaths: append([]string(nil), controlPaths...),
		protected:    prot,
		public:       pub,
	}, nil
}

// Classify classifies path, the full request path including mountPrefix.
func (m *Matcher) Classify(path, mountPrefix string) Class {
	controls := make([]string, len(m.controlPaths))
	for i, c := range m.controlPaths {
		controls[i] = JoinPath(mountPrefix, c)
	}
	return Classify(path, controls, m.protected, m.public)
}
