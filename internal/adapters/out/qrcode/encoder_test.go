package qrcode_test

import (
	"bytes"
	"image/png"
	"testing"

	"exportdocs/internal/adapters/out/qrcode"
	"exportdocs/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_EncodesPNG(t *testing.T) {
	encoder, err := qrcode.NewEncoder(qrcode.DefaultSize)
	require.NoError(t, err)

	out, err := encoder.Encode([]byte(`{"waybill":"EX000001"}`))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
}

func TestEncoder_RejectsEmptyPayload(t *testing.T) {
	encoder, err := qrcode.NewEncoder(qrcode.DefaultSize)
	require.NoError(t, err)

	_, err = encoder.Encode(nil)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewEncoder_TooSmall(t *testing.T) {
	_, err := qrcode.NewEncoder(8)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
