// Package store persists planned level sequences in Redis so identical
// animation requests skip re-planning.
package store
