// Package goCognito is a local emulator of a hosted user-pool identity
// provider: it authenticates users, issues RS256 access, Id and refresh
// tokens, and runs the contact attribute verification lifecycle.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goCognito is the public surface. It exposes [Engine], [Builder], [Config],
// [TokenIssuer] and the request/response value types. Storage, hook
// runtimes and code delivery are collaborators injected through narrow
// interfaces ([CognitoService], [UserPoolService], [Triggers],
// [CodeDelivery]); the store, triggers and delivery subpackages provide
// implementations of them.
//
// # What this package must NOT do
//
//   - Import any sub-package that re-imports goCognito (no import cycles).
//   - Mutate a loaded User in place. Every transition clones the user, edits
//     the copy and saves it once.
//   - Retry collaborator calls. A failure after a save leaves the saved state
//     in place.
package goCognito
