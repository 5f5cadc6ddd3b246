// Package testutil provides shared test fixtures for the task-graph loop.
//
// The fixtures build ready-to-run state documents in common shapes: a linear
// chain of atoms, a graph with an OR-group choice point, and a filled-in
// objective with a completion checklist. Each builder returns a fresh value
// so tests cannot interfere with each other.
package testutil
