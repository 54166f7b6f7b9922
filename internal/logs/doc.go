// Package logs reads the vidgen log file for `vidgen logs`.
//
// Last returns the final lines of the file with bounded memory, and Follow
// polls for lines appended after a byte offset until its context ends.
package logs
