package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gobwas/glob"
)

// Requirement is the access requirement of a route
type Requirement int

const (
	// RequirementAuthenticated requires a valid bearer token
	RequirementAuthenticated Requirement = iota
	// RequirementPublic admits anonymous requests
	RequirementPublic
)

func (r Requirement) String() string {
	if r == RequirementPublic {
		return "public"
	}
	return "authenticated"
}

// AnyMethod matches every HTTP method
const AnyMethod = "*"

// RoutePolicyEntry maps a method and path pattern to a requirement.
//
// Pattern is a glob over '/'-separated segments: "*" matches within one
// segment and "**" across segments. A trailing "/**" also matches the bare
// prefix, so "/public/**" covers "/public".
type RoutePolicyEntry struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

type compiledEntry struct {
	entry RoutePolicyEntry
	globs []glob.Glob
}

// RoutePolicy is an ordered, immutable route table. The first matching entry
// wins; a request no entry matches requires authentication. Safe for
// concurrent use without locking.
type RoutePolicy struct {
	entries []compiledEntry
}

// NewRoutePolicy compiles entries in order
func NewRoutePolicy(entries []RoutePolicyEntry) (*RoutePolicy, error) {
	compiled := make([]compiledEntry, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Pattern, "/") {
			return nil, fmt.Errorf("route pattern %q must start with /", e.Pattern)
		}
		e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
		if e.Method == "" {
			e.Method = AnyMethod
		}

		patterns := []string{e.Pattern}
		if prefix, ok := strings.CutSuffix(e.Pattern, "/**"); ok && prefix != "" {
			patterns = append(patterns, prefix)
		}

		ce := compiledEntry{entry: e}
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("compile route pattern %q: %w", e.Pattern, err)
			}
			ce.globs = append(ce.globs, g)
		}
		compiled = append(compiled, ce)
	}
	return &RoutePolicy{entries: compiled}, nil
}

// Match returns the requirement for the request
func (p *RoutePolicy) Match(method, path string) Requirement {
	method = strings.ToUpper(method)
	for _, ce := range p.entries {
		if ce.entry.Method != AnyMethod && ce.entry.Method != method {
			continue
		}
		for _, g := range ce.globs {
			if g.Match(path) {
				return ce.entry.Requirement
			}
		}
	}
	return RequirementAuthenticated
}

// Entries returns a copy of the table in match order
func (p *RoutePolicy) Entries() []RoutePolicyEntry {
	out := make([]RoutePolicyEntry, len(p.entries))
	for i, ce := range p.entries {
		out[i] = ce.entry
	}
	return out
}

// DefaultPublicRoutes is the anonymous surface: registration, login, token
// validation, public content and operational probes.
func DefaultPublicRoutes() []RoutePolicyEntry {
	return []RoutePolicyEntry{
		{Method: http.MethodPost, Pattern: "/auth/register", Requirement: RequirementPublic},
		{Method: http.MethodPost, Pattern: "/auth/login", Requirement: RequirementPublic},
		{Method: http.MethodGet, Pattern: "/auth/validate", Requirement: RequirementPublic},
		{Method: http.MethodGet, Pattern: "/public/**", Requirement: RequirementPublic},
		{Method: AnyMethod, Pattern: "/healthz", Requirement: RequirementPublic},
		{Method: AnyMethod, Pattern: "/readyz", Requirement: RequirementPublic},
		{Method: http.MethodGet, Pattern: "/metrics", Requirement: RequirementPublic},
	}
}

// ParseRouteSpecs parses "METHOD /pattern" strings into public entries.
// A spec without a method ("/pattern") applies to every method.
func ParseRouteSpecs(specs []string) ([]RoutePolicyEntry, error) {
	entries := make([]RoutePolicyEntry, 0, len(specs))
	for _, spec := range specs {
		fields := strings.Fields(spec)
		var e RoutePolicyEntry
		switch len(fields) {
		case 1:
			e = RoutePolicyEntry{Method: AnyMethod, Pattern: fields[0]}
		case 2:
			e = RoutePolicyEntry{Method: fields[0], Pattern: fields[1]}
		default:
			return nil, fmt.Errorf("invalid route spec %q: want \"METHOD /pattern\"", spec)
		}
		e.Requirement = RequirementPublic
		entries = append(entries, e)
	}
	return entries, nil
}
