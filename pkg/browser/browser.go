// Package browser opens post and media links in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Starter launches a command without waiting for it.
type Starter func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start() // #nosec G204 -- arguments come from Command after URL validation
}

// Opener opens links with the platform's URL handler.
type Opener struct {
	goos  string
	start Starter
}

// NewOpener returns an Opener for the running platform.
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, start: startCommand}
}

// Open opens the specified URL in the default browser.
func (o *Opener) Open(urlString string) error {
	if err := Validate(urlString); err != nil {
		return err
	}
	name, args, err := Command(o.goos, urlString)
	if err != nil {
		return err
	}
	return o.start(name, args...)
}

// Open opens urlString with a platform Opener.
func Open(urlString string) error {
	return NewOpener().Open(urlString)
}

// Validate accepts only absolute http and https URLs, so nothing else is
// ever handed to a shell-level handler.
func Validate(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host in %q", urlString)
	}
	return nil
}

// Command returns the program and arguments that open urlString on goos.
func Command(goos, urlString string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{urlString}, nil
	case "darwin":
		return "open", []string{urlString}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", urlString}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
