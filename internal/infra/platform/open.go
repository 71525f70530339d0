package platform

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// Command constants
const (
	OpenCommand     = "open"
	XDGOpenCommand  = "xdg-open"
	RundllCommand   = "rundll32"
	RundllURLParams = "url.dll,FileProtocolHandler"
)

// Opener launches URLs with the desktop's default handler.
type Opener struct {
	goos string
	run  func(name string, args ...string) error
}

func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, run: runCommand}
}

// Open opens target, which must be an http or https URL.
func (o *Opener) Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("platform: refusing to open %q", target)
	}

	name, args, err := openCommand(o.goos, u.String())
	if err != nil {
		return err
	}
	if err := o.run(name, args...); err != nil {
		return fmt.Errorf("platform: %s: %w", name, err)
	}
	return nil
}

func openCommand(goos, target string) (string, []string, error) {
	switch goos {
	case OSDarwin:
		return OpenCommand, []string{target}, nil
	case OSWindows:
		return RundllCommand, []string{RundllURLParams, target}, nil
	case OSLinux, "freebsd", "openbsd", "netbsd":
		return XDGOpenCommand, []string{target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// The handler may outlive us; reap it in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}
