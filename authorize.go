package biscuitdl

import (
	"context"

	"github.com/biscuit-core/biscuitdl/datalog"
)

// Authorize drives the authorization state machine Init -> AuthorityLoaded
// -> AuthorityEvaluated -> BlockEvaluated* -> Classified (spec §4.7).
//
// It seeds revocation_id facts, runs the authority phase (authority and
// authorizer facts/rules together), snapshots the trust boundary, runs
// each attenuation block in order against the cumulative fact set, and
// finally classifies the outcome from the accumulated failed checks and
// the first matching policy.
//
// limits.MaxTime bounds the whole call as a single wall-clock deadline
// (spec §5), not each phase individually: one deadline is derived here
// and shared by the authority phase's World.Run and every block's, so
// an authorization with N attenuation blocks still gets MaxTime total
// rather than (N+1)xMaxTime.
//
// Invalid limits are rejected up front with an error wrapping
// datalog.ErrInvalidLimits, and, when Limits.Flags.RejectBlockRulesAndFacts
// is set, a block carrying facts or rules is rejected with an
// ExecutionError before any fixpoint runs.
//
// A fatal resource error from the underlying fixpoint (TooManyFacts,
// TooManyIterations, Timeout) short-circuits the whole computation and
// is returned verbatim inside an ExecutionError that adds only an error
// code and the block index at which it occurred (spec §7 class 1). Every
// other failure is a ResultError (spec §7 class 2): NoPoliciesMatched,
// DenyRuleMatched or FailedChecks.
func Authorize(ctx context.Context, authority RevocableBlock, blocks []RevocableBlock, authorizer AuthorizerProgram, limits datalog.Limits, opts ...Option) (*Success, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	options := defaultAuthorizeOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if limits.Flags.RejectBlockRulesAndFacts {
		for i, b := range blocks {
			if len(b.Block.Facts) > 0 {
				return nil, newExecutionError("BLOCK_FACTS_DISALLOWED", i+1, ErrBlockFactsDisallowed)
			}
			if len(b.Block.Rules) > 0 {
				return nil, newExecutionError("BLOCK_RULES_DISALLOWED", i+1, ErrBlockRulesDisallowed)
			}
		}
	}

	// MaxTime bounds the whole authorization, not each phase (spec §5):
	// one deadline is derived here and threaded through every World.Run
	// call below, authority phase and every block alike.
	ctx, cancel := context.WithTimeout(ctx, limits.MaxTime)
	defer cancel()

	world := datalog.NewWorld(limits, datalog.WithMetrics(options.metrics))

	// Init -> AuthorityLoaded: seed revocation_id(index, bytes) for the
	// authority (index 0) and each extra block (index 1..N), in
	// supplied order. The only time all_facts is seeded from outside
	// rule derivation.
	world.AddFact(datalog.NewFact("revocation_id", datalog.Int(0), datalog.Bytes(authority.RevocationID)))
	for i, b := range blocks {
		world.AddFact(datalog.NewFact("revocation_id", datalog.Int(i+1), datalog.Bytes(b.RevocationID)))
	}
	options.logger.Debug().Int("blocks", len(blocks)).Msg("authority loaded")

	// AuthorityLoaded -> AuthorityEvaluated.
	world.AddFacts(authority.Block.Facts)
	world.AddFacts(authorizer.Facts)
	world.AddRules(authority.Block.Rules)
	world.AddRules(authorizer.Rules)

	if err := world.Run(ctx); err != nil {
		return nil, newExecutionError("FIXPOINT_FAILED", 0, err)
	}

	// Trust boundary: everything provable using only authority and
	// authorizer inputs is trusted, and nothing derived afterward can
	// join this set (spec §4.7 transition 2, trust rule).
	authorityFacts := world.Facts()

	var failed []FailedCheck
	for i, c := range authority.Block.Checks {
		if !c.Passes(authorityFacts) {
			failed = append(failed, FailedCheck{BlockIndex: 0, CheckIndex: i, Check: c})
		}
	}
	for i, c := range authorizer.Checks {
		if !c.Passes(authorityFacts) {
			failed = append(failed, FailedCheck{BlockIndex: 0, CheckIndex: len(authority.Block.Checks) + i, Check: c})
		}
	}

	// policy_result is assigned exactly once, here, and never revisited
	// once a later block is loaded (spec §3 ComputeState invariants).
	policyResult := datalog.EvaluatePolicies(authorizer.Policies, authorityFacts)

	options.logger.Debug().
		Int("authority_facts", len(authorityFacts)).
		Int("failed_checks", len(failed)).
		Bool("policy_matched", policyResult.Matched).
		Msg("authority evaluated")

	// AuthorityEvaluated -> BlockEvaluated(k). Each block's rules run in
	// isolation: ResetRules keeps the cumulative facts but drops the
	// previous phase's rules, so a block's rules can never see another
	// block's rules (spec §4.7 transition 3).
	world.ResetRules()
	for i, b := range blocks {
		world.AddRules(b.Block.Rules)
		world.AddFacts(b.Block.Facts)

		if err := world.Run(ctx); err != nil {
			return nil, newExecutionError("FIXPOINT_FAILED", i+1, err)
		}

		allFacts := world.Facts()
		for j, c := range b.Block.Checks {
			if !c.Passes(allFacts) {
				failed = append(failed, FailedCheck{BlockIndex: i + 1, CheckIndex: j, Check: c})
			}
		}

		options.logger.Debug().
			Int("block_index", i+1).
			Int("all_facts", len(allFacts)).
			Msg("block evaluated")

		world.ResetRules()
	}

	return classify(failed, policyResult, authorityFacts, world.Facts(), limits, options)
}

// classify composes the final outcome from (failed_checks, policy_result)
// per the table in spec §4.7.
func classify(
	failed []FailedCheck,
	policyResult datalog.PolicyResult,
	authorityFacts, allFacts []datalog.Fact,
	limits datalog.Limits,
	options authorizeOptions,
) (*Success, error) {
	options.logger.Debug().
		Int("failed_checks", len(failed)).
		Bool("policy_matched", policyResult.Matched).
		Msg("classified")

	switch {
	case len(failed) == 0 && policyResult.Matched && policyResult.Kind == datalog.PolicyAllow:
		return &Success{
			MatchedAllowQuery: *policyResult.Query,
			AuthorityFacts:    authorityFacts,
			AllGeneratedFacts: allFacts,
			Limits:            limits,
		}, nil
	case !policyResult.Matched:
		return nil, NoPoliciesMatched{Failed: failed}
	case policyResult.Kind == datalog.PolicyDeny:
		return nil, DenyRuleMatched{Failed: failed, Matched: *policyResult.Query}
	default: // failed is non-empty, policy matched Allow
		return nil, FailedChecks{Failed: failed}
	}
}
