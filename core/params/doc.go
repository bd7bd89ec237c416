// Package params holds the immutable physical constants of each PV
// technology. A Registry is built once and passed to the technology models;
// lookups return copies so callers can never mutate the shared tables.
package params
