// Package services implements the core orchestration logic: the embedding
// gateway, the grounding context formatter, and the notebook session
// orchestrator. Services depend only on domain types and driven ports.
package services
