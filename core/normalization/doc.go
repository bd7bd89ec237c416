// Package normalization turns absolute technology power into specific yield.
// It owns the three peak conventions (reference conditions, real-world
// conditions, intended efficiency) and the separate sizing strategy used for
// capacity ceilings.
package normalization
