// Package notify carries anomaly events out of the credential engine.
//
// Events describe suspicious but non-fatal observations, today a network
// origin change seen during a refresh. The dispatcher decouples event
// producers from the configured sink with a buffered channel so emitting
// an event is always cheap from the caller's point of view. Sinks are
// deliberately simple: a channel for tests, a line-delimited JSON writer,
// and a best-effort webhook for external receivers.
package notify
