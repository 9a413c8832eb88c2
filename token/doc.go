// Package token signs and verifies the RS256 bearer tokens minted by the
// goCognito engine, and publishes the verification key as a JWKS document.
package token
