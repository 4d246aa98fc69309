// Package lockfile reads the descriptor the local game client writes while
// it is running.
package lockfile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrMalformed = errors.New("malformed lockfile")

// Username is the fixed basic-auth user for every local client endpoint.
const Username = "riot"

// Lockfile holds the colon-delimited fields name:pid:port:password[:protocol].
type Lockfile struct {
	Name     string
	PID      string
	Port     string
	Password string
	Protocol string
}

// DefaultPath returns where the client writes its lockfile.
func DefaultPath() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			base = dir
		}
	}
	return filepath.Join(base, "Riot Games", "Riot Client", "Config", "lockfile")
}

// Read loads the lockfile at path. A missing file means the client is not
// running and yields (nil, nil).
func Read(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lockfile: %w", err)
	}
	return Parse(string(data))
}

func Parse(raw string) (*Lockfile, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: want at least 4 fields, got %d", ErrMalformed, len(parts))
	}
	lf := &Lockfile{
		Name:     parts[0],
		PID:      parts[1],
		Port:     parts[2],
		Password: parts[3],
	}
	if len(parts) > 4 {
		lf.Protocol = parts[4]
	}
	if lf.Port == "" || lf.Password == "" {
		return nil, fmt.Errorf("%w: empty port or password", ErrMalformed)
	}
	return lf, nil
}

// BasicAuth returns the Authorization header value for local endpoints.
func (l *Lockfile) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(Username+":"+l.Password))
}

// Source yields the current lockfile, nil when the client is not running.
type Source interface {
	Lockfile() (*Lockfile, error)
}

// File is a Source reading from a fixed path.
type File string

func (f File) Lockfile() (*Lockfile, error) { return Read(string(f)) }
