package config

// Settings is the library's own configuration, loaded from CRADLE_*
// environment variables.
type (
	Settings struct {
		Resolution *ResolutionSettings
		Log        *LogSettings
	}

	ResolutionSettings struct {
		// Strict switches new definitions to strict assignability
		// scoring, under which ties between candidates are an error.
		Strict bool
		// AllowNonExported lets unexported constructor functions take
		// part in resolution.
		AllowNonExported bool
	}

	LogSettings struct {
		Level string
	}
)

func (l *LogSettings) ApplyDefault() {
	if l.Level == "" {
		l.Level = "info"
	}
}

// LoadSettings loads the library settings with the CRADLE env prefix.
func LoadSettings() (*Settings, error) {
	return Load[Settings](WithEnvPrefix("CRADLE"))
}
