// Package journal keeps a local SQLite record of every render submitted from
// this machine.
//
// The journal is an audit trail for `vidgen history`. It mirrors what the
// task orchestrator observed and is never read back into the orchestrator's
// snapshot; the render service stays authoritative.
package journal
