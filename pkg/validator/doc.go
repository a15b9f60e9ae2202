// Package validator performs per-document authorization. Decisions are made
// from document metadata only: a denied document's content never leaves this
// package, and every decision is a deterministic function of the policy
// tables, the principal, and the document's domain.
package validator
