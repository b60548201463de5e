package rental

import (
	"context"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

// SetPropertyStatus takes a property on or off the market. Rented is never
// set by hand, and no manual change is accepted while a rental is active.
func (e *Engine) SetPropertyStatus(ctx context.Context, id int64, to model.PropertyStatus, actor Actor) (*model.Property, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown property status", model.ErrValidation)
	}
	if to == model.PropertyRented {
		return nil, fmt.Errorf("property %d: rented follows from an active rental: %w", id, model.ErrInvalidTransition)
	}

	var updated *model.Property
	err := e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := loadProperty(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		if err := requireNoActive(ctx, tx, id); err != nil {
			return err
		}
		if p.Status != to {
			if err := store.SetPropertyStatus(ctx, tx, id, to); err != nil {
				return err
			}
		}
		updated, err = store.GetProperty(ctx, tx, id)
		return err
	})
	return updated, err
}

// DeleteProperty soft-deletes a property. A property with an active rental
// stays until the rental is closed.
func (e *Engine) DeleteProperty(ctx context.Context, id int64, actor Actor) error {
	return e.uow.Do(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := loadProperty(ctx, tx, id, actor); err != nil {
			return err
		}
		if err := requireNoActive(ctx, tx, id); err != nil {
			return err
		}
		return store.DeleteProperty(ctx, tx, id)
	})
}

// loadProperty reads a live property the actor may manage.
func loadProperty(ctx context.Context, tx db.DBTX, id int64, actor Actor) (*model.Property, error) {
	p, err := store.GetProperty(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %d: %w", id, model.ErrNotFound)
	}
	if !canDecide(actor, p) {
		return nil, fmt.Errorf("property %d: %w", id, model.ErrForbidden)
	}
	return p, nil
}
