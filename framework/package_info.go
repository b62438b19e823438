// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of tests.
//
// The general model is:
//
// 1. The test harness talks to a remote system under test (here, the case engine) over
// HTTP. How it does that is up to the domain-specific code.
//
// 2. The test harness can expose any number of mock endpoints on a MockServer, to receive
// requests that the system under test makes while it is being tested.
//
// 3. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for issuing the
// requests, providing the HTTP handlers for mock endpoints, and offering a domain-specific
// test API on top of the test context.
package framework
