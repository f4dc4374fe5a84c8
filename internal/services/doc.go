// Package services defines shared error utilities consumed by the pipeline
// stages and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure messages
//     consistent across stages.
//   - Classification helpers that distinguish book-fatal failures from
//     conditions that should degrade and continue.
//
// Use these helpers when wiring new stage logic so operational behaviour stays
// uniform across the pipeline.
package services
