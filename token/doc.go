// Package token issues and validates the signed access tokens produced by a
// successful standalone face login.
//
// Tokens carry only the matched identity and the client session ID. They do
// not carry descriptors, distances, or any biometric material.
package token
