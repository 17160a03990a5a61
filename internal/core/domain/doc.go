// Package domain contains the core business entities for the notebook:
// sources, chunks, chat messages, and the error taxonomy. Types here have
// no dependencies on adapters or infrastructure.
package domain
