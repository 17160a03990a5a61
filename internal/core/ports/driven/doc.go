// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): AI providers, text extraction, and storage.
package driven
