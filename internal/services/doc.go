// Package services defines shared utilities consumed by the codec, gateway,
// preview scheduler, and task orchestrator.
//
// Key responsibilities:
//   - Context helpers that stamp task IDs, preview surface names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep the failure
//     taxonomy (malformed config, validation, transport, remote job failure)
//     uniform across components.
//
// Use these helpers when wiring new client logic so error classification and
// observability stay consistent between the CLI and the core packages.
package services
