// Package types defines the shared data structures of the hrflow engine:
// the Response envelope produced by every handler call, and the coded
// error type used across routing, workflow execution and oracle access.
package types
