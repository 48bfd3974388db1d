// Package tui is the interactive configuration wizard for podsight.
package tui

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/matteoferrigno/podsight/internal/config"
	"github.com/muesli/termenv"
)

type section string

const (
	sectionProviders   section = "providers"
	sectionServer      section = "server"
	sectionPipeline    section = "pipeline"
	sectionSaveExit    section = "save_exit"
	sectionDiscardExit section = "discard_exit"
)

// Run drives the configuration menu loop until save or discard. The edited
// config is written back through config.Save.
func Run(cfg *config.Config) error {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println(StyleMuted.Render("Podcast context enrichment daemon"))
	fmt.Println()

	for {
		selected, err := showMenu()
		if err != nil {
			return err
		}

		switch selected {
		case sectionProviders:
			err = editProviders(cfg)
		case sectionServer:
			err = editServer(cfg)
		case sectionPipeline:
			err = editPipeline(cfg)
		case sectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render(fmt.Sprintf("Invalid configuration: %v", err)))
				continue
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Println(StyleSuccess.Render("Configuration saved."))
			return nil
		case sectionDiscardExit:
			fmt.Println(StyleMuted.Render("Changes discarded."))
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func showMenu() (section, error) {
	options := []huh.Option[section]{
		huh.NewOption("Provider credentials (OpenAI, Anthropic, Spotify)", sectionProviders),
		huh.NewOption("Server settings (listen address, dev mode)", sectionServer),
		huh.NewOption("Pipeline settings (window length, summaries)", sectionPipeline),
		huh.NewOption("Save & Exit", sectionSaveExit),
		huh.NewOption("Discard & Exit", sectionDiscardExit),
	}

	var selected section
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[section]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editProviders(cfg *config.Config) error {
	for {
		options := []huh.Option[string]{
			huh.NewOption(providerLabel(cfg, "openai", "OpenAI - Whisper + GPT"), "openai"),
			huh.NewOption(providerLabel(cfg, "anthropic", "Anthropic - Claude"), "anthropic"),
			huh.NewOption(spotifyLabel(cfg), "spotify"),
			huh.NewOption("Done", "back"),
		}

		var selected string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Provider Settings").
					Description("Select a provider to configure credentials").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch selected {
		case "back":
			return nil
		case "spotify":
			if err := editSpotify(cfg); err != nil {
				return err
			}
		default:
			if err := editAPIKey(cfg, selected); err != nil {
				return err
			}
		}
	}
}

func editAPIKey(cfg *config.Config, provider string) error {
	key := cfg.Providers[provider].APIKey

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API key", provider)).
				Description("Leave empty to use the environment variable").
				EchoMode(huh.EchoModePassword).
				Value(&key),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	pc := cfg.Providers[provider]
	pc.APIKey = key
	cfg.Providers[provider] = pc
	return nil
}

func editSpotify(cfg *config.Config) error {
	pc := cfg.Providers["spotify"]
	clientID := pc.ClientID
	clientSecret := pc.ClientSecret

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spotify client ID").
				Description("Needed only for open.spotify.com episode links").
				Value(&clientID),
			huh.NewInput().
				Title("Spotify client secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	pc.ClientID = clientID
	pc.ClientSecret = clientSecret
	cfg.Providers["spotify"] = pc
	return nil
}

func editServer(cfg *config.Config) error {
	listenAddr := cfg.Server.ListenAddr
	devMode := cfg.Server.DevMode

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Address for the stream and prompt API").
				Value(&listenAddr),
			huh.NewConfirm().
				Title("Dev mode").
				Description("Allow prompt updates over HTTP").
				Value(&devMode),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.ListenAddr = listenAddr
	cfg.Server.DevMode = devMode
	return nil
}

func editPipeline(cfg *config.Config) error {
	windowSeconds := strconv.Itoa(cfg.Audio.WindowSeconds)
	summaryEvery := strconv.Itoa(cfg.Pipeline.SummaryEvery)
	preliminary := cfg.Pipeline.PreliminaryEmit
	dedup := cfg.Reference.DedupLookups

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Window length (seconds)").
				Description("Duration of each transcript segment").
				Value(&windowSeconds).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Summary cadence (segments)").
				Description("Rollup summary every N finalized segments").
				Value(&summaryEvery).
				Validate(validatePositiveInt),
			huh.NewConfirm().
				Title("Preliminary segments").
				Description("Emit transcript-only segments before enrichment").
				Value(&preliminary),
			huh.NewConfirm().
				Title("Deduplicate reference lookups").
				Description("Skip Wikipedia lookups for repeated topics").
				Value(&dedup),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Audio.WindowSeconds, _ = strconv.Atoi(windowSeconds)
	cfg.Pipeline.SummaryEvery, _ = strconv.Atoi(summaryEvery)
	cfg.Pipeline.PreliminaryEmit = preliminary
	cfg.Reference.DedupLookups = dedup
	return nil
}

func providerLabel(cfg *config.Config, name, display string) string {
	if pc, ok := cfg.Providers[name]; ok && pc.APIKey != "" {
		return fmt.Sprintf("%s (configured: %s)", display, maskAPIKey(pc.APIKey))
	}
	return display + " (not configured)"
}

func spotifyLabel(cfg *config.Config) string {
	if pc, ok := cfg.Providers["spotify"]; ok && pc.ClientID != "" && pc.ClientSecret != "" {
		return "Spotify - episode links (configured)"
	}
	return "Spotify - episode links (not configured)"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
