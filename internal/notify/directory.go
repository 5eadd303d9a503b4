package notify

import (
	"regexp"
	"strings"

	"github.com/caretrackhq/backend/internal/staff"
)

var innerSpace = regexp.MustCompile(`\s+`)

// norm canonicalizes a display name or email for lookup: trim, lowercase,
// collapse runs of inner whitespace to a single space.
func norm(s string) string {
	return innerSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Directory indexes a staff snapshot for assignee resolution. Build one
// per dispatch from a fresh ListProfiles read; it is never cached across
// requests.
type Directory struct {
	byUID   map[string]staff.Profile
	byName  map[string]string
	byEmail map[string]string
	all     []staff.Profile
}

// NewDirectory builds the lookup tables from a full staff snapshot.
func NewDirectory(profiles []staff.Profile) *Directory {
	d := &Directory{
		byUID:   make(map[string]staff.Profile, len(profiles)),
		byName:  make(map[string]string, len(profiles)),
		byEmail: make(map[string]string, len(profiles)),
		all:     profiles,
	}
	for _, p := range profiles {
		d.byUID[p.UID] = p
		if p.DisplayName != "" {
			d.byName[norm(p.DisplayName)] = p.UID
		}
		if p.Email != "" {
			d.byEmail[norm(p.Email)] = p.UID
		}
	}
	return d
}

// Resolution is the outcome of resolving an assignee list. ResolvedCount
// counts distinct identifiers that matched a profile, which distinguishes
// "nobody is assigned" from "assignees exist but none could be found".
// Tokens holds the push tokens of the resolved profiles that have one.
type Resolution struct {
	UIDs          []string
	Tokens        []string
	ResolvedCount int
}

// Resolve turns a raw assignee list (uids, display names or emails, in
// any mix) into a deduplicated recipient set, excluding excludeUID.
// Entries that match nothing are dropped silently; a stale reference must
// never fail the batch.
func (d *Directory) Resolve(assignees []string, excludeUID string) Resolution {
	var res Resolution
	seen := make(map[string]struct{})
	for _, entry := range assignees {
		v := strings.TrimSpace(entry)
		if v == "" || v == excludeUID {
			continue
		}
		var uid string
		if LooksLikeUID(v) {
			uid = v
		} else if u, ok := d.byName[norm(v)]; ok {
			uid = u
		} else if u, ok := d.byEmail[norm(v)]; ok {
			uid = u
		}
		if uid == "" || uid == excludeUID {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		profile, ok := d.byUID[uid]
		if !ok {
			continue
		}
		res.UIDs = append(res.UIDs, uid)
		res.ResolvedCount++
		if profile.FCMToken != "" {
			res.Tokens = append(res.Tokens, profile.FCMToken)
		}
	}
	return res
}

// AllStaffTokens returns tokens for every active profile except
// excludeUID. Used for broadcast events such as chat messages.
func (d *Directory) AllStaffTokens(excludeUID string) Resolution {
	var res Resolution
	for _, p := range d.all {
		if p.UID == excludeUID || !p.Active {
			continue
		}
		res.UIDs = append(res.UIDs, p.UID)
		res.ResolvedCount++
		if p.FCMToken != "" {
			res.Tokens = append(res.Tokens, p.FCMToken)
		}
	}
	return res
}
