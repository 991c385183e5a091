// Package render maps parsed terminal styles onto output backends: a
// tcell adapter for screen drawing and an ANSI re-encoder for plain
// writers.
package render
