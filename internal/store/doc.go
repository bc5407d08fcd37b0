// Package store defines interfaces for persisting card states, review sessions
// and review preferences, together with the store errors and the transaction
// helper shared by all implementations.
package store
