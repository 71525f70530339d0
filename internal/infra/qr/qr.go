package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer encodes content as a PNG QR code at the high recovery level.
type Renderer struct {
	level qrcode.RecoveryLevel
}

func NewRenderer() *Renderer {
	return &Renderer{level: qrcode.High}
}

// Render returns a size×size PNG.
func (r *Renderer) Render(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr: empty content")
	}
	if size <= 0 {
		return nil, fmt.Errorf("qr: invalid size %d", size)
	}

	code, err := qrcode.New(content, r.level)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("qr: rasterize: %w", err)
	}
	return png, nil
}
