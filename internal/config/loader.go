package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSettings loads the settings table.
// Search order: customPath -> ~/.autododge/settings.yaml -> ./configs/settings.yaml -> embedded default
func LoadSettings(customPath string) (SettingsTable, error) {
	var table SettingsTable

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return table, fmt.Errorf("failed to read settings %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return table, fmt.Errorf("failed to parse settings %s: %w", customPath, err)
		}
		if err := table.check(); err != nil {
			return table, fmt.Errorf("settings %s: %w", customPath, err)
		}
		return table, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("settings.yaml"); userCfgPath != "" {
		if t, ok := readTable(userCfgPath); ok {
			return t, nil
		}
	}

	// Try local configs directory
	if t, ok := readTable(filepath.Join("configs", "settings.yaml")); ok {
		return t, nil
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultSettingsYAML, &table); err != nil || table.check() != nil {
		return DefaultSettingsTable(), nil // Fallback to hardcoded if embed fails
	}
	return table, nil
}

// readTable parses a settings file, reporting false for missing or unusable files.
func readTable(path string) (SettingsTable, bool) {
	var table SettingsTable
	data, err := os.ReadFile(path)
	if err != nil {
		return table, false
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return table, false
	}
	if table.check() != nil {
		return table, false
	}
	return table, true
}

// check rejects tables the generator could not draw from.
func (t SettingsTable) check() error {
	if len(t.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}
	if _, err := t.Profile(""); err != nil {
		return err
	}
	for _, p := range t.Profiles {
		if len(p.Generator.Durations) == 0 {
			return fmt.Errorf("profile %q: no candidate durations", p.Version)
		}
		if len(p.Generator.Themes) == 0 {
			return fmt.Errorf("profile %q: no themes", p.Version)
		}
		if p.Generator.SkillMax < p.Generator.SkillMin {
			return fmt.Errorf("profile %q: skill_max below skill_min", p.Version)
		}
		if p.Render.Width <= 0 || p.Render.Height <= 0 || p.Render.FPS <= 0 {
			return fmt.Errorf("profile %q: invalid render geometry", p.Version)
		}
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".autododge", filename)
}
