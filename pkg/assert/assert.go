// Package assert guards internal invariants that can only break through a
// programming error in this module, never through bad input.
package assert

import "runtime/debug"

// Assert panics with msg and the current stack when condition is false.
func Assert(condition bool, msg string) {
	if !condition {
		s := debug.Stack()

		panic("assertion failed: " + msg + "\n" + string(s))
	}
}
