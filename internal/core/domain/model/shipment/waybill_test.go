package shipment_test

import (
	"testing"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextWaybillNumber(t *testing.T) {
	t.Run("no prior shipment starts the sequence", func(t *testing.T) {
		w, err := shipment.NextWaybillNumber(shipment.DefaultWaybillPrefix, nil)
		require.NoError(t, err)
		assert.Equal(t, "EX000001", w.String())
	})

	t.Run("increments the prior code", func(t *testing.T) {
		last, err := shipment.ParseWaybillNumber("EX000042")
		require.NoError(t, err)

		w, err := shipment.NextWaybillNumber("EX", &last)
		require.NoError(t, err)
		assert.Equal(t, "EX000043", w.String())
	})

	t.Run("carries across a power of ten", func(t *testing.T) {
		last, err := shipment.ParseWaybillNumber("EX000999")
		require.NoError(t, err)
		assert.Equal(t, "EX001000", last.Next().String())
	})

	t.Run("grows past the padded width instead of wrapping", func(t *testing.T) {
		last, err := shipment.ParseWaybillNumber("EX999999")
		require.NoError(t, err)
		assert.Equal(t, "EX1000000", last.Next().String())
	})

	t.Run("continues the sequence under a new prefix", func(t *testing.T) {
		last, err := shipment.ParseWaybillNumber("EX000007")
		require.NoError(t, err)

		w, err := shipment.NextWaybillNumber("IM", &last)
		require.NoError(t, err)
		assert.Equal(t, "IM000008", w.String())
	})

	t.Run("rejects an invalid prefix", func(t *testing.T) {
		_, err := shipment.NextWaybillNumber("ex", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects a zero value prior code", func(t *testing.T) {
		var last shipment.WaybillNumber
		_, err := shipment.NextWaybillNumber("EX", &last)
		require.Error(t, err)
	})
}

func TestParseWaybillNumber(t *testing.T) {
	w, err := shipment.ParseWaybillNumber("EX000042")
	require.NoError(t, err)
	assert.Equal(t, "EX", w.Prefix())
	assert.Equal(t, 42, w.Sequence())
	require.NoError(t, w.Validate())

	for _, in := range []string{"", "EX", "000042", "EXA00042", "ex000042", "EX-00042", "EX000000", " EX000042"} {
		t.Run("malformed "+in, func(t *testing.T) {
			_, err := shipment.ParseWaybillNumber(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, shipment.ErrWaybillNumberIsMalformed)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}
}

func TestWaybillNumber_ZeroValueIsInvalid(t *testing.T) {
	var w shipment.WaybillNumber
	require.Error(t, w.Validate())
}
