package rbac

import (
	"fmt"
	"strings"
)

// FromName selects the configured strategy. The two strategies disagree
// on how capabilities compose and are never mixed at call sites, so the
// choice is made once, at startup.
func FromName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hierarchy", "ranked":
		return NewRankedHierarchy(), nil
	case "flat", "allowlist":
		return NewFlatAllowList(), nil
	default:
		return nil, fmt.Errorf("unknown access policy %q", name)
	}
}
