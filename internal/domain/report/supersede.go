package report

import "github.com/clinident/clinident/internal/domain/treatmentplan"

// ActiveRejections filters the rejections the caregiver still needs to
// act on. A rejection is superseded when an approved claim for the same
// (type, specification) identity was decided strictly after the
// rejection was created: the caregiver redid the work and a reviewer
// accepted it. One later approval clears every earlier rejection of
// that identity.
//
// The match is identity-only, not plan-scoped: an approval under a
// newer plan clears a rejection left over from a closed one.
func ActiveRejections(rejected, approved []*Item) []*Item {
	latestApproval := make(map[treatmentplan.ItemIdentity]*Item, len(approved))
	for _, a := range approved {
		if a.DecidedAt == nil {
			continue
		}
		cur, ok := latestApproval[a.Identity()]
		if !ok || a.DecidedAt.After(*cur.DecidedAt) {
			latestApproval[a.Identity()] = a
		}
	}

	var active []*Item
	for _, r := range rejected {
		if a, ok := latestApproval[r.Identity()]; ok && a.DecidedAt.After(r.CreatedAt) {
			continue
		}
		active = append(active, r)
	}
	return active
}
