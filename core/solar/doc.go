// Package solar implements the solar geometry and irradiance helpers shared by
// the technology models and the real-world peak finder: sun position (NOAA
// algorithm), angle of incidence, isotropic plane-of-array transposition,
// Kasten-Young air mass and the Sandia module/cell temperature model.
package solar
