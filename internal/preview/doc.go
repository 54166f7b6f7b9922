// Package preview keeps low-cost renderer previews in step with an editing
// session.
//
// Each Surface debounces edits on its own timer, numbers every request it
// issues and applies a response only if it belongs to the newest request.
// Late answers to superseded requests are discarded, failures stay scoped to
// the surface that saw them, and in-flight calls are never cancelled by later
// edits.
package preview
