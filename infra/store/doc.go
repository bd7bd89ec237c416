// Package store provides persistent yield series stores. Importing the
// package registers the "csv", "sqlite", "valkey" and "s3" store types with
// core/store.
package store
