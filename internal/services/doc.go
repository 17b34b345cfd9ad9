// Package services wires the license workflows to their external dependencies.
//
// LicenseService implements activation (marketplace verification followed by minting) and trial issuance.
// The marketplace is reached through the PurchaseVerifier interface so handlers and tests can substitute it.
package services
