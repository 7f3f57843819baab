package biscuitdl

import "github.com/biscuit-core/biscuitdl/datalog"

// Block is a token block's contribution: a triple of facts, rules and
// checks (spec §3). The authority block and every attenuation block
// share this shape; only their trust treatment during authorization
// differs.
type Block struct {
	Facts  []datalog.Fact
	Rules  []datalog.Rule
	Checks []datalog.Check
}

// RevocableBlock pairs a Block with the opaque revocation identifier
// carried alongside it on the wire. The executor never inspects the
// identifier's contents; it only seeds it as a revocation_id fact.
type RevocableBlock struct {
	Block        Block
	RevocationID []byte
}

// AuthorizerProgram is the verifier-side virtual block: facts, rules and
// checks like any other block, plus the ordered list of policies that
// decides the outcome.
type AuthorizerProgram struct {
	Facts    []datalog.Fact
	Rules    []datalog.Rule
	Checks   []datalog.Check
	Policies []datalog.Policy
}
