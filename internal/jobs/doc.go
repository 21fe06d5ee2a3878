// Package jobs persists translation job history backed by SQLite.
//
// Every selection that starts a remote translation records a row here. The
// store is the daemon's audit trail: which element was requested, which
// generation of the selection controller owned it, and how the job ended.
package jobs
