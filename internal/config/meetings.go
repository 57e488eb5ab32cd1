package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MeetingsConfig holds the rules applied when a meeting is created. The
// defaults match the public site; operators can override any field from a
// YAML file.
type MeetingsConfig struct {
	// ReservedIDs cannot be claimed as custom meeting IDs because a page
	// already lives at that path.
	ReservedIDs []string `yaml:"reserved_ids"`

	// DefaultTimezone preselects the timezone on a new draft.
	DefaultTimezone string `yaml:"default_timezone"`

	// DefaultEarliest and DefaultLatest preselect the time-of-day range
	// (hours, 0-24).
	DefaultEarliest int `yaml:"default_earliest"`
	DefaultLatest   int `yaml:"default_latest"`

	// IDLength is the length of generated meeting IDs.
	IDLength int `yaml:"id_length"`

	// TitleMaxLength caps the meeting title, counted in characters.
	TitleMaxLength int `yaml:"title_max_length"`

	// Timezones lists the zones offered in the timezone select. Any valid
	// IANA zone is still accepted through the API.
	Timezones []string `yaml:"timezones"`
}

// DefaultMeetingsConfig returns the built-in meeting rules.
func DefaultMeetingsConfig() MeetingsConfig {
	return MeetingsConfig{
		ReservedIDs:     []string{"about"},
		DefaultTimezone: "UTC",
		DefaultEarliest: 9,
		DefaultLatest:   17,
		IDLength:        6,
		TitleMaxLength:  100,
		Timezones: []string{
			"UTC",
			"America/Los_Angeles",
			"America/Denver",
			"America/Chicago",
			"America/New_York",
			"America/Sao_Paulo",
			"Europe/London",
			"Europe/Berlin",
			"Europe/Helsinki",
			"Africa/Johannesburg",
			"Asia/Dubai",
			"Asia/Kolkata",
			"Asia/Shanghai",
			"Asia/Tokyo",
			"Asia/Seoul",
			"Australia/Sydney",
			"Pacific/Auckland",
		},
	}
}

// LoadMeetingsOptions reads a YAML options file and overlays it on base.
// Fields absent from the file keep their base value.
func LoadMeetingsOptions(path string, base MeetingsConfig) (MeetingsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading %s: %w", path, err)
	}

	// Unmarshal onto a copy of base so missing keys keep their defaults.
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

// Validate checks the rules for internal consistency.
func (m MeetingsConfig) Validate() error {
	if m.DefaultEarliest < 0 || m.DefaultLatest > 24 || m.DefaultEarliest >= m.DefaultLatest {
		return fmt.Errorf("default time range %d-%d is invalid", m.DefaultEarliest, m.DefaultLatest)
	}
	if m.IDLength < 4 || m.IDLength > 32 {
		return fmt.Errorf("id_length must be between 4 and 32, got %d", m.IDLength)
	}
	if m.TitleMaxLength <= 0 {
		return errors.New("title_max_length must be positive")
	}
	if m.DefaultTimezone == "" {
		return errors.New("default_timezone is required")
	}
	return nil
}
