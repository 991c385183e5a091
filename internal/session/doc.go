// Package session coordinates a shell process, an ANSI parser, and a
// transcript buffer into one terminal session that a host UI can poll.
//
// # Per-tick update
//
// The host calls Tick once per render frame. A tick never blocks: it
// drains whatever output the shell has produced, splits it on line
// boundaries, feeds complete lines through the session's parser, and
// appends the resulting styled lines to the transcript. A trailing
// partial line is buffered until its newline arrives or the session
// ends; it is never discarded.
//
// Input flows the other way untouched: keystrokes go to WriteInput,
// submitted commands to WriteCommand.
//
// # Threading
//
// A Session is designed for single-threaded cooperative polling from the
// host render loop and must be ticked from one goroutine. The Manager,
// which tracks many sessions, is safe for concurrent use.
//
// # Lifecycle
//
// Sessions are one-shot, like their shell process: construct, Start,
// poll, Close. The transcript survives process exit: a crashed shell
// leaves its output readable alongside its exit code. It is emptied
// only by Clear.
package session
