package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/opdusage/internal/config"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues backs the first-run form.
type setupValues struct {
	DataFile  string
	Delimiter string
	Theme     string
	UseCache  bool
}

func defaultSetupValues(location string) setupValues {
	cfg, _ := config.Load()
	if location == "" {
		location = cfg.General.DataFile
	}
	return setupValues{
		DataFile:  location,
		Delimiter: cfg.General.Delimiter,
		Theme:     cfg.Appearance.Theme,
		UseCache:  cfg.General.UseCache,
	}
}

func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to opdusage").
				Description("Point it at a CSV or XLSX export of OPD benefit usage.\nLocal paths and s3://bucket/key locations both work."),
			huh.NewInput().
				Title("Data file").
				Placeholder("data1.csv").
				Value(&vals.DataFile).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("data file is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("CSV delimiter").
				CharLimit(1).
				Value(&vals.Delimiter).
				Validate(func(s string) error {
					if utf8.RuneCountInString(s) != 1 {
						return errors.New("delimiter must be a single character")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Cache parsed records?").
				Description("Re-reads are skipped while the file is unchanged.").
				Value(&vals.UseCache),
		),
	).WithTheme(huh.ThemeDracula())
}

// apply copies the form values onto cfg.
func (v setupValues) apply(cfg config.Config) config.Config {
	cfg.General.DataFile = strings.TrimSpace(v.DataFile)
	cfg.General.Delimiter = v.Delimiter
	cfg.General.UseCache = v.UseCache
	cfg.Appearance.Theme = v.Theme
	return cfg
}

func (v setupValues) save() error {
	return v.saveTo(config.Path())
}

func (v setupValues) saveTo(path string) error {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg = v.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.SaveTo(path, cfg)
}

// RunSetup runs the first-run form standalone and writes the config file.
func RunSetup() (config.Config, error) {
	vals := defaultSetupValues("")
	if err := newSetupForm(&vals).Run(); err != nil {
		return config.Config{}, err
	}
	if err := vals.save(); err != nil {
		return config.Config{}, fmt.Errorf("saving config: %w", err)
	}
	return config.Load()
}
