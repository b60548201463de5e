// Package rental implements the rental lifecycle: creating rentals, moving
// them through their statuses and keeping each property's status in step
// with its rentals. Every operation runs in one unit of work, so a rental
// and its property change together or not at all.
package rental

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

// NotesSeparator separates note entries appended by EndRental.
const NotesSeparator = "\n---\n"

// UnitOfWork runs fn in a single transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
}

// Observer is told about every committed status change. from is zero for
// newly created rentals.
type Observer interface {
	RentalTransition(from, to model.RentalStatus)
}

// Engine applies lifecycle operations.
type Engine struct {
	uow      UnitOfWork
	now      func() time.Time
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for default end dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithObserver registers an observer for committed transitions.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine over the given unit of work.
func NewEngine(uow UnitOfWork, opts ...Option) *Engine {
	e := &Engine{uow: uow, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) notify(from, to model.RentalStatus) {
	if e.observer != nil {
		e.observer.RentalTransition(from, to)
	}
}

// CreateRequest describes a new rental.
type CreateRequest struct {
	PropertyID int64
	// TenantID and TenantName default to the actor.
	TenantID    *int64
	TenantName  string
	TenantEmail string
	TenantPhone string
	StartDate   time.Time
	// MonthlyRentCents defaults to the property's rent when nil.
	MonthlyRentCents     *int64
	SecurityDepositCents int64
	Notes                string
	// InquiryID, when set, is marked converted and linked to the new rental.
	InquiryID int64
}

func (req CreateRequest) validate() error {
	if req.PropertyID <= 0 {
		return fmt.Errorf("%w: property is required", model.ErrValidation)
	}
	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", model.ErrValidation)
	}
	if req.MonthlyRentCents != nil && *req.MonthlyRentCents < 0 {
		return fmt.Errorf("%w: monthly rent must not be negative", model.ErrValidation)
	}
	if req.SecurityDepositCents < 0 {
		return fmt.Errorf("%w: security deposit must not be negative", model.ErrValidation)
	}
	return nil
}

// Create opens a rental on a live property. The rental starts active when the
// actor owns the property and pending otherwise.
func (e *Engine) Create(ctx context.Context, req CreateRequest, actor Actor) (*model.Rental, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var created *model.Rental
	err := e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := store.GetProperty(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("property %d: %w", req.PropertyID, model.ErrNotFound)
		}

		r := &model.Rental{
			PropertyID:           p.ID,
			TenantID:             req.TenantID,
			TenantName:           strings.TrimSpace(req.TenantName),
			TenantEmail:          req.TenantEmail,
			TenantPhone:          req.TenantPhone,
			StartDate:            req.StartDate,
			MonthlyRentCents:     p.MonthlyRentCents,
			SecurityDepositCents: req.SecurityDepositCents,
			Status:               model.RentalPending,
			Notes:                req.Notes,
			CreatedBy:            actor.UserID,
		}
		if req.MonthlyRentCents != nil {
			r.MonthlyRentCents = *req.MonthlyRentCents
		}
		if isOwner(actor, p) {
			r.Status = model.RentalActive
		}
		if r.TenantID == nil && !isOwner(actor, p) {
			id := actor.UserID
			r.TenantID = &id
		}
		if r.TenantID != nil {
			u, err := store.GetUser(ctx, tx, *r.TenantID)
			if err != nil {
				return err
			}
			if u == nil || u.DeletedAt != nil {
				return fmt.Errorf("tenant %d: %w", *r.TenantID, model.ErrNotFound)
			}
			if r.TenantName == "" {
				r.TenantName = u.Username
			}
		}
		if r.TenantName == "" {
			return fmt.Errorf("%w: tenant name is required", model.ErrValidation)
		}

		if r.Status == model.RentalActive {
			if err := requireNoActive(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		id, err := store.CreateRental(ctx, tx, r)
		if err != nil {
			return err
		}
		if err := settleProperty(ctx, tx, p, false); err != nil {
			return err
		}

		if req.InquiryID != 0 {
			convertInquiry(ctx, tx, req.InquiryID, p.ID, id)
		}

		created, err = store.GetRental(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(0, created.Status)
	return created, nil
}

// convertInquiry links an inquiry to the rental created from it. Failures
// are logged and do not undo the rental.
func convertInquiry(ctx context.Context, tx db.DBTX, inquiryID, propertyID, rentalID int64) {
	in, err := store.GetInquiry(ctx, tx, inquiryID)
	if err != nil {
		slog.Warn("inquiry conversion skipped", "inquiry", inquiryID, "error", err)
		return
	}
	if in == nil || (in.PropertyID != nil && *in.PropertyID != propertyID) {
		slog.Warn("inquiry conversion skipped", "inquiry", inquiryID, "reason", "not found for property", "property", propertyID)
		return
	}
	ok, err := store.MarkInquiryConverted(ctx, tx, inquiryID, rentalID)
	if err != nil {
		slog.Warn("inquiry conversion skipped", "inquiry", inquiryID, "error", err)
		return
	}
	if !ok {
		slog.Warn("inquiry conversion skipped", "inquiry", inquiryID, "reason", "already converted")
	}
}

// Get returns a rental visible to the actor.
func (e *Engine) Get(ctx context.Context, id int64, actor Actor) (*model.Rental, error) {
	var out *model.Rental
	err := e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		r, p, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanView(actor, r, p) {
			return notFound(id)
		}
		out = r
		return nil
	})
	return out, err
}

// UpdateStatus moves a rental to status to. Approval decisions (to active
// or rejected) need the property owner or an admin; the rental's creator may
// otherwise end or terminate it. Closing without an end date stamps today.
func (e *Engine) UpdateStatus(ctx context.Context, id int64, to model.RentalStatus, actor Actor) (*model.Rental, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown rental status", model.ErrValidation)
	}

	var from model.RentalStatus
	var updated *model.Rental
	err := e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		r, p, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if needsApproval(to) {
			if !canDecide(actor, p) {
				return notFound(id)
			}
		} else if !canModify(actor, r, p) {
			return notFound(id)
		}
		if !CanTransition(r.Status, to) {
			return fmt.Errorf("rental %d from %s to %s: %w", id, r.Status, to, model.ErrInvalidTransition)
		}
		if to == model.RentalActive {
			if err := requireNoActive(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		from = r.Status
		r.Status = to
		if to.Closed() && r.EndDate == nil {
			today := e.today()
			r.EndDate = &today
		}
		if err := store.UpdateRental(ctx, tx, r); err != nil {
			return err
		}
		if err := settleProperty(ctx, tx, p, to.Terminal()); err != nil {
			return err
		}

		updated, err = store.GetRental(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(from, to)
	return updated, nil
}

// Approve activates a pending rental.
func (e *Engine) Approve(ctx context.Context, id int64, actor Actor) (*model.Rental, error) {
	return e.UpdateStatus(ctx, id, model.RentalActive, actor)
}

// Reject declines a pending rental.
func (e *Engine) Reject(ctx context.Context, id int64, actor Actor) (*model.Rental, error) {
	return e.UpdateStatus(ctx, id, model.RentalRejected, actor)
}

// EndRequest carries the end date and closing notes of an active rental.
type EndRequest struct {
	EndDate time.Time
	Notes   string
}

// End closes an active rental on the given date. Notes are appended to the
// existing notes, never replacing them.
func (e *Engine) End(ctx context.Context, id int64, req EndRequest, actor Actor) (*model.Rental, error) {
	if req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: end date is required", model.ErrValidation)
	}

	var ended *model.Rental
	err := e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		r, p, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canModify(actor, r, p) {
			return notFound(id)
		}
		if r.Status != model.RentalActive {
			return fmt.Errorf("rental %d is %s, only active rentals can be ended: %w", id, r.Status, model.ErrPreconditionFailed)
		}
		if req.EndDate.Before(r.StartDate) {
			return fmt.Errorf("%w: end date is before the start date", model.ErrValidation)
		}

		r.Status = model.RentalEnded
		end := req.EndDate
		r.EndDate = &end
		r.Notes = appendNotes(r.Notes, req.Notes)
		if err := store.UpdateRental(ctx, tx, r); err != nil {
			return err
		}
		if err := settleProperty(ctx, tx, p, true); err != nil {
			return err
		}

		ended, err = store.GetRental(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(model.RentalActive, model.RentalEnded)
	return ended, nil
}

// Delete permanently removes a rental. Active rentals must be ended first,
// whoever asks.
func (e *Engine) Delete(ctx context.Context, id int64, actor Actor) error {
	return e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		r, p, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canModify(actor, r, p) {
			return notFound(id)
		}
		if r.Status == model.RentalActive {
			return fmt.Errorf("rental %d is active, end it before deleting: %w", id, model.ErrPreconditionFailed)
		}
		if err := store.DeleteRental(ctx, tx, id); err != nil {
			return err
		}
		return settleProperty(ctx, tx, p, false)
	})
}

func (e *Engine) today() time.Time {
	y, m, d := e.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFound(id int64) error {
	return fmt.Errorf("rental %d: %w", id, model.ErrNotFound)
}

// load reads a rental and its live property.
func load(ctx context.Context, tx db.DBTX, id int64) (*model.Rental, *model.Property, error) {
	r, err := store.GetRental(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, notFound(id)
	}
	p, err := store.GetProperty(ctx, tx, r.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, notFound(id)
	}
	return r, p, nil
}

func requireNoActive(ctx context.Context, tx db.DBTX, propertyID int64) error {
	n, err := store.CountActiveRentals(ctx, tx, propertyID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("property %d already has an active rental: %w", propertyID, model.ErrPreconditionFailed)
	}
	return nil
}

// settleProperty brings the property's status in line with its rentals:
// rented while any rental is active, available once the unit is freed, and
// untouched otherwise.
func settleProperty(ctx context.Context, tx db.DBTX, p *model.Property, freed bool) error {
	active, err := store.CountActiveRentals(ctx, tx, p.ID)
	if err != nil {
		return err
	}

	var want model.PropertyStatus
	switch {
	case active > 0:
		want = model.PropertyRented
	case freed || p.Status == model.PropertyRented:
		want = model.PropertyAvailable
	default:
		return nil
	}
	if want == p.Status {
		return nil
	}
	if err := store.SetPropertyStatus(ctx, tx, p.ID, want); err != nil {
		return err
	}
	p.Status = want
	return nil
}

func appendNotes(existing, more string) string {
	more = strings.TrimSpace(more)
	switch {
	case more == "":
		return existing
	case existing == "":
		return more
	default:
		return existing + NotesSeparator + more
	}
}
