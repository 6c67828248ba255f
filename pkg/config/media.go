package config

import (
	"fmt"
	"strings"
	"time"
)

// MediaConfig configures the media-host client used to store binary
// assets (book covers, PDFs). BaseURL points at the host's upload
// endpoint; UploadPreset is the host-side unsigned upload preset.
type MediaConfig struct {
	BaseURL        string        `koanf:"baseUrl"`
	UploadPreset   string        `koanf:"uploadPreset"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxUploadBytes int64         `koanf:"maxUploadBytes"`
}

// String returns a string representation of the media configuration.
func (c *MediaConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Media ---\n")
	b.WriteString(fmt.Sprintf("  baseUrl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  uploadPreset: %s\n", c.UploadPreset))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  maxUploadBytes: %d\n", c.MaxUploadBytes))
	return b.String()
}

func (c *MediaConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("media base URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("media client timeout is not configured")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("media max upload size is not configured")
	}
	return nil
}
