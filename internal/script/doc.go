// Package script runs line-oriented bench scripts against a command state.
//
// Each line is split shell-style; "#" starts a comment. The first word names
// a registered command (roll, pitch, yaw, thrust, rel, set, send, arm, sleep,
// ...). Unknown direction words are skipped with a warning. Unknown commands
// and malformed arguments stop the script with a *LineError.
package script
