package config

import (
	"os"
	"strings"
)

// RetainerRolloverDisabled turns off the unused-hours rollover credit for
// retainer cases firm-wide. The rollover arithmetic is inferred from the
// retainer_rollover / retainer_auto_renew flags and has not been confirmed
// against product intent, so operations can switch it off without a deploy.
//
// Set via env:
// - RETAINER_ROLLOVER_DISABLED=true
func RetainerRolloverDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("RETAINER_ROLLOVER_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictApprovalGate, when enabled, also rejects NON-billable time entries
// against cases that are still pending approval. The default policy only
// gates billable entries.
//
// Set via env:
// - STRICT_APPROVAL_GATE=true
func StrictApprovalGate() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_APPROVAL_GATE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
