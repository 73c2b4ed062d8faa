// Package workflow implements the node/edge orchestration engine: a
// validated graph of named steps over a shared typed state, an engine that
// executes graphs with persisted checkpoints, and the checkpoint storage
// interface with an in-memory reference implementation.
//
// Graphs are built once per workflow type at system start and validated at
// construction. Execution is strictly sequential within one run; different
// thread ids may run concurrently because each run owns its state
// exclusively and graphs are read-only after Build.
package workflow
