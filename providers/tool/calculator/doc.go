// Package calculator provides a safe arithmetic-expression evaluator and
// wraps it as the agent's "calculator" tool.
//
// Expressions pass through a layered validation pipeline before anything is
// parsed: an emptiness check, a length cap, a denylist scan for high-signal
// dangerous substrings, and a character whitelist. Only then is the input
// parsed by a self-contained recursive-descent parser into a small
// expression tree (literals, unary +/-, binary arithmetic) and evaluated
// post-order with division-by-zero and exponent-size guards. The pipeline
// order is part of the contract: a denylisted token reports SECURITY even
// though its letters would also fail the later character whitelist.
package calculator
