// Package casetests contains the contract tests for the case engine and their supporting API.
//
// Test infrastructure that is not specific to the case engine, such as running subtests and
// receiving requests on mock endpoints, is in the lower-level framework package. The engine's
// REST API is wrapped by the service package.
package casetests
