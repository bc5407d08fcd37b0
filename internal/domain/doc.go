// Package domain contains the core entities of the review engine: the per-word
// CardState memory record, review outcomes, word types, review preferences and
// the error taxonomy shared by the scheduling, selection and session packages.
//
// Nothing in this package performs I/O or reads the clock. Every operation
// that depends on time receives "now" as a parameter.
package domain
