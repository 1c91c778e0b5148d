package ports

// QREncoder renders a payload as a PNG QR code.
type QREncoder interface {
	Encode(payload []byte) ([]byte, error)
}
