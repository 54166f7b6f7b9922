// Package main hosts the vidgen CLI entrypoint and command graph.
//
// The Cobra command tree edits project files on disk, submits them to the
// render service, follows render tasks, drives live previews, and reads the
// local submission journal. Configuration and logger setup are resolved once
// per invocation in commandContext so subcommands only deal with their own
// flags and output.
//
// New behavior belongs in the internal packages first; commands here should
// stay thin adapters between flags and those packages.
package main
