package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// System writes to the operating system clipboard.
type System struct{}

func New() System { return System{} }

// Available reports whether a clipboard utility was found for this platform.
func (System) Available() bool {
	return !clipboard.Unsupported
}

func (s System) WriteText(text string) error {
	if !s.Available() {
		return errors.New("clipboard: no clipboard utility found")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("clipboard: refusing to write empty text")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: write: %w", err)
	}
	return nil
}

// ReadText returns the current clipboard contents.
func (s System) ReadText() (string, error) {
	if !s.Available() {
		return "", errors.New("clipboard: no clipboard utility found")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("clipboard: read: %w", err)
	}
	return text, nil
}
