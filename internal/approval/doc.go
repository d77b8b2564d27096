// Package approval implements the manual gate backing the Review stage.
// An approval action blocks pipeline progression until an approver acts.
// The gate itself carries no timeout: cancellation comes from the caller's
// context, and a rejected or cancelled run must be re-triggered by an
// operator.
package approval
