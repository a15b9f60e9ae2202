// Package policy holds the immutable configuration tables that drive
// authorization and redaction: the sensitive-pattern registry, the role
// access rules, the department role mapping, and the per-role masking policy.
//
// All tables are constructed once at process start and passed explicitly into
// component constructors. They are never mutated after construction, so
// concurrent requests can share them without locking. Reload is implemented
// by building a fresh Tables value and swapping it atomically at the pipeline
// level.
//
// # Fail-closed defaults
//
// RoleMapping.Map is a total function: any (department, role) pair absent
// from the table resolves to the guest role, never to an elevated role.
// Likewise, a canonical role absent from the masking policy masks every
// registered label.
//
// # Startup validation
//
// Tables.Validate enforces the configuration invariants from the design:
// every canonical role has an access rule, every rule permits the public
// domain, every corpus domain is reachable by at least one role, and every
// mapped role is a known canonical role. Validation failures are fatal; the
// process must refuse to serve traffic with an incomplete access table.
package policy
