package shipment_test

import (
	"testing"
	"time"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledger(t *testing.T, shipmentID kernel.UUID, start time.Time, edges ...[2]shipment.Status) []shipment.StatusChange {
	t.Helper()

	actor := kernel.NewUUID()
	entries := make([]shipment.StatusChange, 0, len(edges))
	for i, e := range edges {
		c, err := shipment.RestoreStatusChange(kernel.NewUUID(), shipmentID, e[0], e[1], actor, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		entries = append(entries, c)
	}
	return entries
}

func TestReplayHistory(t *testing.T) {
	id := kernel.NewUUID()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("empty ledger stays at the initial status", func(t *testing.T) {
		s, err := shipment.ReplayHistory(shipment.Pending, nil)
		require.NoError(t, err)
		assert.Equal(t, shipment.Pending, s)
	})

	t.Run("full delivery path from a draft", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Saved, shipment.Pending},
			[2]shipment.Status{shipment.Pending, shipment.Confirmed},
			[2]shipment.Status{shipment.Confirmed, shipment.Processing},
			[2]shipment.Status{shipment.Processing, shipment.InTransit},
			[2]shipment.Status{shipment.InTransit, shipment.Delivered},
		)
		s, err := shipment.ReplayHistory(shipment.Saved, entries)
		require.NoError(t, err)
		assert.Equal(t, shipment.Delivered, s)
	})

	t.Run("cancellation midway", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Pending, shipment.Confirmed},
			[2]shipment.Status{shipment.Confirmed, shipment.Cancelled},
		)
		s, err := shipment.ReplayHistory(shipment.Pending, entries)
		require.NoError(t, err)
		assert.Equal(t, shipment.Cancelled, s)
	})

	t.Run("illegal edge", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Pending, shipment.Processing},
		)
		_, err := shipment.ReplayHistory(shipment.Pending, entries)
		require.ErrorIs(t, err, shipment.ErrHistoryIsInconsistent)
	})

	t.Run("gap between entries", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Pending, shipment.Confirmed},
			[2]shipment.Status{shipment.Processing, shipment.InTransit},
		)
		_, err := shipment.ReplayHistory(shipment.Pending, entries)
		require.ErrorIs(t, err, shipment.ErrHistoryIsInconsistent)
	})

	t.Run("transition out of a terminal status", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Pending, shipment.Cancelled},
			[2]shipment.Status{shipment.Cancelled, shipment.Pending},
		)
		_, err := shipment.ReplayHistory(shipment.Pending, entries)
		require.ErrorIs(t, err, shipment.ErrHistoryIsInconsistent)
	})

	t.Run("entries out of order", func(t *testing.T) {
		entries := ledger(t, id, start,
			[2]shipment.Status{shipment.Pending, shipment.Confirmed},
			[2]shipment.Status{shipment.Confirmed, shipment.Processing},
		)
		late, err := shipment.RestoreStatusChange(entries[0].ID(), id, shipment.Pending, shipment.Confirmed,
			entries[0].ChangedBy(), start.Add(time.Hour))
		require.NoError(t, err)
		entries[0] = late

		_, err = shipment.ReplayHistory(shipment.Pending, entries)
		require.ErrorIs(t, err, shipment.ErrHistoryIsInconsistent)
	})

	t.Run("non-initial starting status", func(t *testing.T) {
		_, err := shipment.ReplayHistory(shipment.Confirmed, nil)
		require.ErrorIs(t, err, shipment.ErrHistoryIsInconsistent)
	})
}

func TestRestoreStatusChange_RejectsInvalidStatus(t *testing.T) {
	_, err := shipment.RestoreStatusChange(kernel.NewUUID(), kernel.NewUUID(), shipment.Unknown, shipment.Pending, kernel.NewUUID(), time.Now())
	require.Error(t, err)
}
