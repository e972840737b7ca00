// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is deliberately sequential: documents, batches and inserts
// run one at a time so external rate limits are respected and chunk/vector
// insert ordering stays trivial. Interruption is recovered through
// resumability, not cancellation bookkeeping.
package services
