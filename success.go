package biscuitdl

import "github.com/biscuit-core/biscuitdl/datalog"

// Success is the outcome of an authorization whose checks all passed and
// whose first matching policy was an Allow (spec §6).
type Success struct {
	// MatchedAllowQuery is the allow policy's query that matched, along
	// with its solution bindings.
	MatchedAllowQuery datalog.MatchedQuery

	// AuthorityFacts is the trust-boundary snapshot taken at the end of
	// the authority phase: every fact derivable from authority and
	// authorizer inputs alone. Block-contributed facts are never in
	// here (spec §4.7 trust rule).
	AuthorityFacts []datalog.Fact

	// AllGeneratedFacts is every fact derived across the whole
	// authorization, authority and blocks alike.
	AllGeneratedFacts []datalog.Fact

	// Limits is the resource budget the authorization ran under.
	Limits datalog.Limits
}

// QueryAuthorizerFacts evaluates query against the trust-boundary
// snapshot only (spec §4.8): block-contributed facts are never
// queryable post-hoc, even if they happen to also satisfy query.
func (s *Success) QueryAuthorizerFacts(query datalog.Query) []datalog.Binding {
	return query.Solutions(s.AuthorityFacts)
}
