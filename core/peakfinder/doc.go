// Package peakfinder estimates a technology's empirical peak power. It
// searches a canonical reference weather year for the timestep closest to
// standard test conditions (1000 W/m2 plane-of-array, 25 degC cell) and
// re-evaluates the technology model at that single timestep.
//
// The search has two stages: the two timesteps nearest in irradiance are
// kept, then the one nearest in cell temperature wins. Exact ties at either
// stage resolve to the earliest timestamp.
package peakfinder
