package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

const dirPermissions = 0o755

// Saver writes downloads into a directory, never overwriting an existing file.
type Saver struct {
	fs  afero.Fs
	dir string
}

// NewSaver returns a saver rooted at dir on fs. An empty dir resolves to the
// user's Downloads folder, falling back to the working directory.
func NewSaver(fs afero.Fs, dir string) *Saver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = DefaultDownloadDir()
	}
	return &Saver{fs: fs, dir: dir}
}

// Dir is where files are written.
func (s *Saver) Dir() string { return s.dir }

// Save writes data under name and returns the final path. When name is taken a
// numeric suffix is added ("qr-abc (1).png").
func (s *Saver) Save(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", errors.New("files: empty file name")
	}

	if err := s.fs.MkdirAll(s.dir, dirPermissions); err != nil {
		return "", fmt.Errorf("files: create %s: %w", s.dir, err)
	}

	path, err := s.freePath(name)
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("files: write %s: %w", path, err)
	}
	return path, nil
}

func (s *Saver) freePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		path := filepath.Join(s.dir, candidate)
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", fmt.Errorf("files: stat %s: %w", path, err)
		}
		if !exists {
			return path, nil
		}
	}
	return "", fmt.Errorf("files: no free name for %s", name)
}

// DefaultDownloadDir returns ~/Downloads, or the working directory when the home
// directory cannot be determined.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
