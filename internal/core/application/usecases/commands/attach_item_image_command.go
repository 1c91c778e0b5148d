package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/guard"
)

var (
	ErrAttachItemImageCommandIsNotConstructed = errors.New(
		"AttachItemImageCommand must be created via NewAttachItemImageCommand constructor",
	)
)

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// IsAllowedImageType reports whether contentType is a raster image format
// accepted for item pictures. Parameters such as charset are ignored.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[mediaType(contentType)]
	return ok
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// AttachItemImageCommand uploads a picture of a line item.
type AttachItemImageCommand struct { //nolint:recvcheck //using for validation
	shipmentID  kernel.UUID
	itemID      kernel.UUID
	filename    string
	contentType string
	content     io.Reader

	guard guard.ConstructorGuard
}

// NewAttachItemImageCommand accepts PNG, JPEG, GIF and WebP content only.
// The filename is reduced to its base name.
func NewAttachItemImageCommand(
	shipmentID, itemID kernel.UUID,
	filename, contentType string,
	content io.Reader,
) (AttachItemImageCommand, error) {
	var filenameErr, contentTypeErr, contentErr error

	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filenameErr = errs.NewValueIsRequiredError("filename")
	}
	if IsAllowedImageType(contentType) {
		contentType = mediaType(contentType)
	} else {
		contentTypeErr = errs.NewValueIsInvalidErrorWithCause("content type", fmt.Errorf("%q is not an accepted image format", contentType))
	}
	if content == nil {
		contentErr = errs.NewValueIsRequiredError("content")
	}

	if err := errors.Join(
		shipmentID.Validate(),
		itemID.Validate(),
		filenameErr,
		contentTypeErr,
		contentErr,
	); err != nil {
		return AttachItemImageCommand{}, err
	}

	return AttachItemImageCommand{
		shipmentID:  shipmentID,
		itemID:      itemID,
		filename:    filename,
		contentType: contentType,
		content:     content,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c AttachItemImageCommand) Validate() error {
	return c.guard.Validate(ErrAttachItemImageCommandIsNotConstructed)
}

func (c AttachItemImageCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c AttachItemImageCommand) ItemID() kernel.UUID     { return c.itemID }
func (c AttachItemImageCommand) Filename() string        { return c.filename }
func (c AttachItemImageCommand) ContentType() string     { return c.contentType }
func (c AttachItemImageCommand) Content() io.Reader      { return c.content }
