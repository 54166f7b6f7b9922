// Package tasks tracks video render jobs submitted to the render service.
//
// The Orchestrator gates submissions locally, keeps one serialized poller
// per non-terminal job and replaces its snapshot of a job with every status
// the service reports. Queued and Processing are the only states that poll;
// Completed and Failed are terminal.
package tasks
