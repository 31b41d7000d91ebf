package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

var (
	ErrDeviceDisabled   = errors.New("capture device is disabled")
	ErrChecksumMismatch = errors.New("capture device checksum mismatch")
	ErrNoDevice         = errors.New("no capture device for source")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers an external capture binary served over go-plugin.
type Manifest struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Binary  string   `json:"binary"`
	SHA256  string   `json:"sha256"`
	Enabled bool     `json:"enabled"`
	Sources []Source `json:"sources"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("device name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("device version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("device binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("device sha256 must be lowercase 64-char hex")
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("device sources are required")
	}
	seen := map[Source]struct{}{}
	for _, source := range m.Sources {
		if err := source.Validate(); err != nil {
			return err
		}
		if _, ok := seen[source]; ok {
			return fmt.Errorf("duplicate source: %s", source)
		}
		seen[source] = struct{}{}
	}
	return nil
}

func (m Manifest) Serves(source Source) bool {
	return slices.Contains(m.Sources, source)
}
