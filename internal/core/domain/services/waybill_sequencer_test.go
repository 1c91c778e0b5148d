package services_test

import (
	"testing"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaybillSequencer_Next(t *testing.T) {
	seq, err := services.NewWaybillSequencer("TH")
	require.NoError(t, err)

	first, err := seq.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, "TH000001", first.String())

	last, err := shipment.ParseWaybillNumber("TH000041")
	require.NoError(t, err)
	next, err := seq.Next(&last)
	require.NoError(t, err)
	assert.Equal(t, "TH000042", next.String())
}

func TestNewWaybillSequencer_RejectsBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "th", "THX", "T1"} {
		_, err := services.NewWaybillSequencer(prefix)
		assert.Error(t, err, prefix)
	}
}
