// Package technology defines the Model capability shared by every PV
// technology and its three implementations: flat-plate silicon (si), the
// concentrator/flat hybrid (cpv) and the perovskite-silicon tandem (psi).
//
// Models are pure: Compute evaluates one weather series and returns the
// absolute DC power in watts per module, one value per timestep. The
// normalization engine decides which peak divides that series.
package technology
