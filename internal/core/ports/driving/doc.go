// Package driving provides interfaces for presentation adapters
// (primary/inbound ports). The CLI and TUI drive the notebook through
// these interfaces only.
package driving
