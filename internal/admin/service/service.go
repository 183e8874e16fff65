// Package service holds the control panel's operations. Every operation takes
// the resolved domain.Caller explicitly and checks it before touching state.
package service

import (
	"strings"
	"time"
)

// clock returns now in UTC from an injectable source.
func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// orUnknown fills empty provenance fields for audit rows.
func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, ceiling)
}
