package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	cfg        store.FocusSettings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMinutes      *string
	breakMinutes     *string
	audioEnabled     *bool
	dayStart         *string
	dayEnd           *string
	presets          *string
	reminderInterval *string
}

func newSettingsModel(s *store.Store) settingsModel {
	wm, bm, ds, de, pr, ri := "", "", "", "", "", ""
	audio := true
	return settingsModel{
		store:            s,
		cfg:              store.DefaultFocusSettings(),
		workMinutes:      &wm,
		breakMinutes:     &bm,
		audioEnabled:     &audio,
		dayStart:         &ds,
		dayEnd:           &de,
		presets:          &pr,
		reminderInterval: &ri,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	cfg store.FocusSettings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg, err := s.store.GetFocusSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return settingsDataMsg{cfg: cfg}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.cfg = msg.cfg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workMinutes = strconv.Itoa(s.cfg.WorkMinutes)
	*s.breakMinutes = strconv.Itoa(s.cfg.BreakMinutes)
	*s.audioEnabled = s.cfg.AudioEnabled
	*s.dayStart = strconv.Itoa(s.cfg.DayStartHour)
	*s.dayEnd = strconv.Itoa(s.cfg.DayEndHour)
	*s.presets = presetsString(s.cfg.DurationPresets)
	*s.reminderInterval = strconv.Itoa(s.cfg.ReminderIntervalMinutes)

	validMinutes := func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 || n > 60 {
			return fmt.Errorf("must be 1-60")
		}
		return nil
	}
	validHour := func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 || n > 23 {
			return fmt.Errorf("must be 0-23")
		}
		return nil
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default block length (min)").Value(s.workMinutes).Validate(validMinutes),
			huh.NewInput().Title("Break length (min)").Value(s.breakMinutes).Validate(validMinutes),
			huh.NewInput().Title("Duration presets (min, comma-separated)").Value(s.presets),
		).Title("Blocks"),
		huh.NewGroup(
			huh.NewInput().Title("Day starts at (hour)").Value(s.dayStart).Validate(validHour),
			huh.NewInput().Title("Day ends at (hour)").Value(s.dayEnd).Validate(validHour),
			huh.NewInput().Title("Reminder interval (min, 0 = off)").Value(s.reminderInterval),
			huh.NewConfirm().Title("Chime on session complete").Value(s.audioEnabled),
		).Title("Day"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Save error: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsSavedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	cfg := s.cfg
	cfg.WorkMinutes = atoiOr(*s.workMinutes, cfg.WorkMinutes)
	cfg.BreakMinutes = atoiOr(*s.breakMinutes, cfg.BreakMinutes)
	cfg.AudioEnabled = *s.audioEnabled
	cfg.DayStartHour = atoiOr(*s.dayStart, cfg.DayStartHour)
	cfg.DayEndHour = atoiOr(*s.dayEnd, cfg.DayEndHour)
	cfg.ReminderIntervalMinutes = atoiOr(*s.reminderInterval, cfg.ReminderIntervalMinutes)
	if presets := parsePresetInput(*s.presets); len(presets) > 0 {
		cfg.DurationPresets = presets
	}
	if cfg.DayEndHour < cfg.DayStartHour {
		cfg.DayStartHour, cfg.DayEndHour = cfg.DayEndHour, cfg.DayStartHour
	}
	return s.store.PutFocusSettings(cfg)
}

func atoiOr(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func parsePresetInput(v string) []int {
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 60 {
			continue
		}
		out = append(out, n)
	}
	return out
}

func presetsString(presets []int) string {
	parts := make([]string, len(presets))
	for i, p := range presets {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	audio := "off"
	if s.cfg.AudioEnabled {
		audio = "on"
	}
	reminder := "off"
	if s.cfg.ReminderIntervalMinutes > 0 {
		reminder = fmt.Sprintf("every %dm", s.cfg.ReminderIntervalMinutes)
	}

	rows := []string{
		titleStyle.Render("Settings"),
		"",
		settingRow("Default block length", formatMinutes(s.cfg.WorkMinutes)),
		settingRow("Break length", formatMinutes(s.cfg.BreakMinutes)),
		settingRow("Duration presets", presetsString(s.cfg.DurationPresets)),
		settingRow("Day window", fmt.Sprintf("%s – %s", formatHour(s.cfg.DayStartHour), formatHour(s.cfg.DayEndHour))),
		settingRow("Reminders", reminder),
		settingRow("Completion chime", audio),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Width(24).Render(label),
		highlightStyle.Render(value))
}
