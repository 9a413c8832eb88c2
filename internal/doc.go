// Package internal contains helpers private to goCognito: opaque challenge
// session handles and numeric one-time codes, both drawn from crypto/rand.
//
// Sub-packages:
//
//   - config: process configuration loaded with viper
//   - logging: zap logger construction
//   - server: the JSON-over-HTTP protocol surface
package internal
