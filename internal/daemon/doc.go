// Package daemon coordinates the long-running lathe process.
//
// It wires configuration, the job store, the scene manager, and the selection
// controller into a single lifecycle with flock-based locking to prevent
// multiple instances, and serves the HTTP API the viewer surface talks to.
//
// Keep orchestration logic here: selection and scene semantics live in their
// respective packages while the daemon focuses on startup, shutdown, and the
// API boundary.
package daemon
