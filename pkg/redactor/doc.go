// Package redactor rewrites sensitive values in document content with mask
// tokens. Patterns are applied in priority order with span claiming: once a
// pattern claims a byte range, later patterns cannot remask any part of it,
// so each sensitive value is masked exactly once by the most specific
// detector that recognizes it.
package redactor
