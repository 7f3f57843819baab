// Package biscuitdl is the authorization core of a Biscuit-style bearer
// token: a scoped Datalog executor that decides whether a token, together
// with an authorizer-supplied policy program, authorizes a request.
//
// A token carries an immutable authority block and zero or more
// attenuation blocks, each contributing facts, rules and checks. The
// authorizer adds its own facts, rules, checks and an ordered list of
// allow/deny policies. Authorize computes the fixpoint of all facts
// derivable under bounded resources, evaluates every check, selects the
// first matching policy, and returns either a Success carrying the
// matched allow query and the derived facts, or a classified failure.
//
// Cryptographic key handling, token (de)serialization, signature
// verification, the surface-syntax parser and CLI/wire packaging are all
// out of scope: this package consumes already-parsed blocks and an
// already-parsed authorizer program. The underlying Datalog fragment
// lives in the datalog subpackage.
package biscuitdl
