// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/directory). This root
// package holds sentinel errors, validation types, and the operation error
// type shared across all entities.
package domain
