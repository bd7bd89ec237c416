// Package scenario evaluates a PV setup table: one row per surface,
// technology and orientation. For each row it resolves the tilt, reuses the
// stored yield series when one exists for the exact key or computes and
// normalizes a new one, derives the capacity ceiling of the surface and
// hands it to a ProductionRecorder.
//
// Rows are independent and may run in parallel. The check-compute-write
// sequence is serialized per series key so that the same key is never
// computed twice concurrently.
package scenario
