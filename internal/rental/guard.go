package rental

import "github.com/erazemk/minirent/internal/model"

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

func isOwner(a Actor, p *model.Property) bool { return p.OwnerID == a.UserID }

func isCreator(a Actor, r *model.Rental) bool { return r.CreatedBy == a.UserID }

func isTenant(a Actor, r *model.Rental) bool { return r.TenantID != nil && *r.TenantID == a.UserID }

// CanView reports whether the actor may see the rental at all.
func CanView(a Actor, r *model.Rental, p *model.Property) bool {
	return a.IsAdmin || isOwner(a, p) || isCreator(a, r) || isTenant(a, r)
}

// canDecide covers approve and reject.
func canDecide(a Actor, p *model.Property) bool {
	return a.IsAdmin || isOwner(a, p)
}

// canModify covers status updates, ending and deleting.
func canModify(a Actor, r *model.Rental, p *model.Property) bool {
	return a.IsAdmin || isOwner(a, p) || isCreator(a, r)
}
