// Package core defines the shared language of the metacatalog system.
//
// This package contains:
//   - Domain entities (Asset and its Policy, Claim and Model payloads)
//   - Enumerations (AssetKind, RegTag, ClaimStatus, DataKind)
//   - Service interfaces (Store)
//   - Sentinel and validation errors
//
// The Golden Rule: pkg/core imports ONLY third-party value types and stdlib.
// All other packages depend on core, not the reverse.
package core
