package store

import (
	"fmt"
	"strconv"
	"strings"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// DefaultFocusSettings are applied for any key missing from the
// settings table.
func DefaultFocusSettings() FocusSettings {
	return FocusSettings{
		WorkMinutes:             60,
		BreakMinutes:            10,
		AudioEnabled:            true,
		DayStartHour:            8,
		DayEndHour:              18,
		DurationPresets:         []int{25, 40, 60},
		ReminderIntervalMinutes: 5,
	}
}

// GetFocusSettings loads the focus settings, falling back to defaults
// for missing or malformed values.
func (s *Store) GetFocusSettings() (FocusSettings, error) {
	fs := DefaultFocusSettings()
	raw, err := s.GetAllSettings()
	if err != nil {
		return fs, err
	}

	getInt := func(key string, dst *int) {
		if v, ok := raw[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	getInt("work_minutes", &fs.WorkMinutes)
	getInt("break_minutes", &fs.BreakMinutes)
	getInt("day_start_hour", &fs.DayStartHour)
	getInt("day_end_hour", &fs.DayEndHour)
	getInt("reminder_interval_minutes", &fs.ReminderIntervalMinutes)

	if v, ok := raw["audio_enabled"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			fs.AudioEnabled = b
		}
	}
	if v, ok := raw["duration_presets"]; ok {
		if presets := parsePresets(v); len(presets) > 0 {
			fs.DurationPresets = presets
		}
	}
	return fs, nil
}

func (s *Store) PutFocusSettings(fs FocusSettings) error {
	presets := make([]string, len(fs.DurationPresets))
	for i, p := range fs.DurationPresets {
		presets[i] = strconv.Itoa(p)
	}
	values := map[string]string{
		"work_minutes":              strconv.Itoa(fs.WorkMinutes),
		"break_minutes":             strconv.Itoa(fs.BreakMinutes),
		"audio_enabled":             strconv.FormatBool(fs.AudioEnabled),
		"day_start_hour":            strconv.Itoa(fs.DayStartHour),
		"day_end_hour":              strconv.Itoa(fs.DayEndHour),
		"duration_presets":          strings.Join(presets, ","),
		"reminder_interval_minutes": strconv.Itoa(fs.ReminderIntervalMinutes),
	}
	for k, v := range values {
		if err := s.SetSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func parsePresets(v string) []int {
	var presets []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 || n > 60 {
			continue
		}
		presets = append(presets, n)
	}
	return presets
}
