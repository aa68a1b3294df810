// Package query builds SQL WHERE/ORDER/LIMIT fragments with positional
// arguments. Domain packages translate their listing options into a
// Builder; repositories append the resulting fragment to a base SELECT.
//
// The builder guards the two places listing options could inject SQL:
// order columns are checked against a per-call whitelist, and every value
// travels as a positional argument.
package query
