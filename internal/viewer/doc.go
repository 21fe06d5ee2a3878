// Package viewer maps user element selections onto the translation pipeline.
//
// The controller is a four-state machine (idle, loading, displaying, error)
// guarded by one mutex. Every selection bumps a monotonic generation counter;
// poll completions compare their recorded generation against the current one
// under that mutex and stale results are discarded without touching the scene.
// The visible model therefore always corresponds to the most recent selection,
// whatever order the network answers in.
package viewer
