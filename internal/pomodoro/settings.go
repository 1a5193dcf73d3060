package pomodoro

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

var ErrInvalidSettings = errors.New("invalid pomodoro settings")

// Settings are durations in minutes.
type Settings struct {
	WorkDuration           int
	ShortBreakDuration     int
	LongBreakDuration      int
	SessionsUntilLongBreak int
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:           25,
		ShortBreakDuration:     5,
		LongBreakDuration:      15,
		SessionsUntilLongBreak: 4,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.WorkDuration < 1:
		return fmt.Errorf("%w: work duration must be at least 1 minute", ErrInvalidSettings)
	case s.ShortBreakDuration < 1:
		return fmt.Errorf("%w: short break must be at least 1 minute", ErrInvalidSettings)
	case s.LongBreakDuration < 1:
		return fmt.Errorf("%w: long break must be at least 1 minute", ErrInvalidSettings)
	case s.SessionsUntilLongBreak < 2:
		return fmt.Errorf("%w: long break interval must be at least 2 sessions", ErrInvalidSettings)
	}
	return nil
}

// Seconds returns the full countdown for a session of type t.
func (s Settings) Seconds(t SessionType) int {
	switch t {
	case ShortBreak:
		return s.ShortBreakDuration * 60
	case LongBreak:
		return s.LongBreakDuration * 60
	default:
		return s.WorkDuration * 60
	}
}

// SettingsPatch holds the fields to change; nil fields are kept.
type SettingsPatch struct {
	WorkDuration           *int
	ShortBreakDuration     *int
	LongBreakDuration      *int
	SessionsUntilLongBreak *int
}

func (p SettingsPatch) merge(s Settings) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.ShortBreakDuration != nil {
		s.ShortBreakDuration = *p.ShortBreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.SessionsUntilLongBreak != nil {
		s.SessionsUntilLongBreak = *p.SessionsUntilLongBreak
	}
	return s
}

const (
	keyWork                   = "pomodoro_work"
	keyShortBreak             = "pomodoro_short_break"
	keyLongBreak              = "pomodoro_long_break"
	keySessionsUntilLongBreak = "pomodoro_sessions_until_long_break"
)

type SettingsSource interface {
	GetAllSettings() ([]store.Setting, error)
}

type SettingsSink interface {
	SetSetting(key, value string) error
}

// LoadSettings reads the pomodoro keys from src. Missing or unreadable
// values fall back to the defaults.
func LoadSettings(src SettingsSource) (Settings, error) {
	all, err := src.GetAllSettings()
	if err != nil {
		return DefaultSettings(), fmt.Errorf("load pomodoro settings: %w", err)
	}

	s := DefaultSettings()
	for _, kv := range all {
		n, err := strconv.Atoi(kv.Value)
		if err != nil {
			continue
		}
		switch kv.Key {
		case keyWork:
			s.WorkDuration = n
		case keyShortBreak:
			s.ShortBreakDuration = n
		case keyLongBreak:
			s.LongBreakDuration = n
		case keySessionsUntilLongBreak:
			s.SessionsUntilLongBreak = n
		}
	}
	if err := s.Validate(); err != nil {
		return DefaultSettings(), err
	}
	return s, nil
}

func SaveSettings(dst SettingsSink, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for key, v := range map[string]int{
		keyWork:                   s.WorkDuration,
		keyShortBreak:             s.ShortBreakDuration,
		keyLongBreak:              s.LongBreakDuration,
		keySessionsUntilLongBreak: s.SessionsUntilLongBreak,
	} {
		if err := dst.SetSetting(key, strconv.Itoa(v)); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}
