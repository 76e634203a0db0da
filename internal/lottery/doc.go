// Package lottery implements a non-interactive aggregatable lottery.
//
// Overview:
//   - Each registered user locally decides per beacon-seeded round whether
//     they won with probability 1/k and, if so, produces a short ticket
//   - Jack tickets are KZG vector-commitment openings; any set of winning
//     tickets for one round folds into a single group element checked by one
//     pairing equation
//   - A folklore BLS-H baseline with the same surface is included for
//     comparison
//
// Security Model:
//   - Commitments are binding under q-SDH over the structured reference
//     string; extraction relies on the simulation-extractability of the
//     commitment combined with the unpredictable beacon
//   - Lottery labels and aggregate folding weights are domain-separated
//     hash-to-field outputs
//   - All randomness enters through caller-supplied entropy oracles
//
// Usage:
//   - Setup once, KeyGen per user, then per round: SampleSeed, Participate,
//     GetTicket, Aggregate, VerifyAggregate
//   - FKPreprocess turns ticket production into a table lookup
//
// WARNING: This package is a research prototype. The trusted setup is run by
// a single party and nothing is hardened against side channels.
package lottery
