// Package query contains read operations following the CQRS pattern.
// Queries never modify state - they only read and return data.
package query
