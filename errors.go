package biscuitdl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/biscuit-core/biscuitdl/datalog"
)

// Fatal resource errors (spec §7 class 1) pass through from the
// underlying World verbatim: no partial facts, no partial check list.
// Callers can test for these with errors.Is.
var (
	ErrTooManyFacts      = datalog.ErrTooManyFacts
	ErrTooManyIterations = datalog.ErrTooManyIterations
	ErrTimeout           = datalog.ErrTimeout
)

// ErrBlockFactsDisallowed and ErrBlockRulesDisallowed are returned, via
// ExecutionError, when Limits.Flags.RejectBlockRulesAndFacts is set and
// a non-authority block carries facts or rules respectively. Rejection
// happens before fixpoint begins (spec §5).
var (
	ErrBlockFactsDisallowed = errors.New("biscuitdl: non-authority block carries facts and feature_flags.reject_block_rules_and_facts is set")
	ErrBlockRulesDisallowed = errors.New("biscuitdl: non-authority block carries rules and feature_flags.reject_block_rules_and_facts is set")
)

// ExecutionError wraps a fatal resource error or a rejected-input error
// with the structured context (block index, feature flag) needed to
// diagnose it, the way holomush's domain errors attach oops.Code/oops.With
// to a sentinel failure. errors.Is/errors.As against the wrapped sentinel
// still work through oops's error chain.
type ExecutionError struct {
	err error
}

func (e *ExecutionError) Error() string { return e.err.Error() }
func (e *ExecutionError) Unwrap() error { return e.err }

func newExecutionError(code string, blockIndex int, err error) error {
	return &ExecutionError{
		err: oops.Code(code).With("block_index", blockIndex).Wrap(err),
	}
}

// FailedCheck records one check that did not pass, identified by which
// block contributed it (0 = authority, 1..N = attenuation blocks in
// order) and its position within that block's check list.
type FailedCheck struct {
	BlockIndex int
	CheckIndex int
	Check      datalog.Check
}

func (f FailedCheck) String() string {
	return fmt.Sprintf("block #%d check #%d: %s", f.BlockIndex, f.CheckIndex, datalog.Debugger{}.Check(f.Check))
}

// ResultError is the "this token doesn't authorize" family (spec §7
// class 2): computed only after the state machine has finished all of
// its non-fatal work, carrying whatever diagnostic payload the outcome
// table (spec §4.7) assigns it.
type ResultError interface {
	error
	FailedChecks() []FailedCheck
}

// NoPoliciesMatched is returned when no policy in the authorizer's
// ordered list matched, regardless of whether any checks also failed.
type NoPoliciesMatched struct {
	Failed []FailedCheck
}

func (e NoPoliciesMatched) FailedChecks() []FailedCheck { return e.Failed }
func (e NoPoliciesMatched) Error() string {
	if len(e.Failed) == 0 {
		return "biscuitdl: no policy matched"
	}
	return "biscuitdl: no policy matched; " + joinFailedChecks(e.Failed)
}

// DenyRuleMatched is returned when the first matching policy was a Deny,
// regardless of whether any checks also failed.
type DenyRuleMatched struct {
	Failed  []FailedCheck
	Matched datalog.MatchedQuery
}

func (e DenyRuleMatched) FailedChecks() []FailedCheck { return e.Failed }
func (e DenyRuleMatched) Error() string {
	base := fmt.Sprintf("biscuitdl: denied by policy %s", datalog.Debugger{}.Query(e.Matched.Query))
	if len(e.Failed) == 0 {
		return base
	}
	return base + "; " + joinFailedChecks(e.Failed)
}

// FailedChecks is returned when the first matching policy was an Allow
// but at least one check failed; the failing checks veto the allow.
type FailedChecks struct {
	Failed []FailedCheck
}

func (e FailedChecks) FailedChecks() []FailedCheck { return e.Failed }
func (e FailedChecks) Error() string {
	return "biscuitdl: " + joinFailedChecks(e.Failed)
}

func joinFailedChecks(failed []FailedCheck) string {
	parts := make([]string, len(failed))
	for i, f := range failed {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}
