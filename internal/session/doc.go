// Package session holds the state of one console session.
//
// A session owns:
//
//   - [Configuration]: the QR styling document handed to the renderer
//   - the transcript of user commands and their results
//   - the system log (boot messages, async completions)
//   - an animation counter the presentation layer watches
//
// # Ownership
//
// [State] is not safe for concurrent use. Exactly one goroutine owns it;
// timers and background work hand their mutations back through a
// [Scheduler]. The TUI uses the Bubble Tea event loop for this, the
// headless runner uses [Loop].
package session
