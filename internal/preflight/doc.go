// Package preflight provides readiness checks for the render service and
// the local paths vidgen depends on.
//
// `vidgen doctor` runs RunAll and prints one row per check. Individual checks
// are exported so other commands can probe a single dependency.
package preflight
