package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

type gauge struct{ value int }

func (g *gauge) SetStatusDrift(n int) { g.value = n }

func TestRunNowSnapshotsAndAudits(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, err := store.CreateUser(ctx, database, "olga", "hash", model.RoleOwner, "")
	require.NoError(t, err)
	p, err := store.CreateProperty(ctx, database, &model.Property{
		OwnerID: owner.ID, Title: "Loft", Address: "Main 1", City: "Ljubljana", MonthlyRentCents: 90000,
	})
	require.NoError(t, err)
	// Marked rented without any rental behind it.
	require.NoError(t, store.SetPropertyStatus(ctx, database, p.ID, model.PropertyRented))

	g := &gauge{}
	s := NewScheduler(database, "", g)
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Nil(t, s.Last())

	report, err := s.RunNow(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.Owners)
	require.Len(t, report.Drift, 1)
	assert.Equal(t, p.ID, report.Drift[0].PropertyID)
	assert.Equal(t, 1, g.value)
	assert.Same(t, report, s.Last())

	snap, err := store.GetOwnerStats(ctx, database, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.RentedCount)
	assert.True(t, snap.RefreshedAt.Equal(fixed))

	// Repairing the property clears the drift on the next run.
	require.NoError(t, store.SetPropertyStatus(ctx, database, p.ID, model.PropertyAvailable))
	report, err = s.RunNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Drift)
	assert.Equal(t, 0, g.value)
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, err := store.CreateUser(ctx, database, "olga", "hash", model.RoleOwner, "")
	require.NoError(t, err)

	_, err = Refresh(ctx, database, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.DeleteUser(ctx, database, owner.ID))

	report, err := Refresh(ctx, database, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, report.Owners)

	all, err := store.ListOwnerStats(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(db.NewTestDB(t), "every now and then", nil)
	require.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(db.NewTestDB(t), "@every 1h", nil)
	require.NoError(t, s.Start())
	s.Stop()
}
