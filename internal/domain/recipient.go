package domain

import "strings"

// Role tags where a recipient came from.
type Role string

const (
	RoleBroadcast  Role = "broadcast"
	RoleSubscriber Role = "subscriber"
	RoleAdmin      Role = "admin"
)

// Recipient is one delivery target for a single dispatch.
type Recipient struct {
	ID   string
	Role Role
}

// DuplicateDetail breaks down why identifiers were dropped.
type DuplicateDetail struct {
	AdminInSubscribers   []string
	DuplicateSubscribers []string
	DuplicateAdmins      []string
	BroadcastOverlap     bool
}

// Resolution is the deduplicated recipient set for one reminder.
type Resolution struct {
	Recipients        []Recipient
	OriginalCount     int
	DuplicatesRemoved int
	Duplicates        DuplicateDetail
}

// IDs returns the recipient identifiers in delivery order.
func (r Resolution) IDs() []string {
	out := make([]string, 0, len(r.Recipients))
	for _, rc := range r.Recipients {
		out = append(out, rc.ID)
	}
	return out
}

// ResolveRecipients merges subscribers, admins and the broadcast target
// into one ordered set. Blank identifiers are dropped before comparison;
// identifiers are compared after trimming only.
func ResolveRecipients(subscribers, admins []string, broadcast string) Resolution {
	var res Resolution
	seen := make(map[string]Role)

	add := func(id string, role Role) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = role
		res.Recipients = append(res.Recipients, Recipient{ID: id, Role: role})
		return true
	}

	for _, raw := range subscribers {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		res.OriginalCount++
		if !add(id, RoleSubscriber) {
			res.Duplicates.DuplicateSubscribers = append(res.Duplicates.DuplicateSubscribers, id)
		}
	}

	for _, raw := range admins {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		res.OriginalCount++
		if add(id, RoleAdmin) {
			continue
		}
		if seen[id] == RoleSubscriber {
			res.Duplicates.AdminInSubscribers = append(res.Duplicates.AdminInSubscribers, id)
		} else {
			res.Duplicates.DuplicateAdmins = append(res.Duplicates.DuplicateAdmins, id)
		}
	}

	if id := strings.TrimSpace(broadcast); id != "" {
		res.OriginalCount++
		if !add(id, RoleBroadcast) {
			res.Duplicates.BroadcastOverlap = true
		}
	}

	res.DuplicatesRemoved = res.OriginalCount - len(res.Recipients)
	return res
}
