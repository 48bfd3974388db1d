package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	podsightDir := filepath.Join(configDir, "podsight")
	if err := os.MkdirAll(podsightDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return podsightDir, nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return Load()
	}

	log.Printf("Config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.applyDefaults()

	log.Printf("Config: configuration loaded successfully")
	return &config, nil
}

// applyDefaults fills zero values left out of a hand-edited file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = def.Server.ListenAddr
	}
	if c.Audio.WindowSeconds == 0 {
		c.Audio.WindowSeconds = def.Audio.WindowSeconds
	}
	if c.Audio.BufferSize == 0 {
		c.Audio.BufferSize = def.Audio.BufferSize
	}
	if c.Audio.ChannelBufferSize == 0 {
		c.Audio.ChannelBufferSize = def.Audio.ChannelBufferSize
	}
	if c.Audio.FFmpegPath == "" {
		c.Audio.FFmpegPath = def.Audio.FFmpegPath
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = def.Transcription.Provider
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = def.Transcription.Model
	}
	if c.Transcription.Timeout == 0 {
		c.Transcription.Timeout = def.Transcription.Timeout
	}
	if len(c.Context.ProviderOrder) == 0 {
		c.Context.ProviderOrder = def.Context.ProviderOrder
	}
	if c.Context.AnthropicModel == "" {
		c.Context.AnthropicModel = def.Context.AnthropicModel
	}
	if c.Context.OpenAIModel == "" {
		c.Context.OpenAIModel = def.Context.OpenAIModel
	}
	if c.Context.MaxTokens == 0 {
		c.Context.MaxTokens = def.Context.MaxTokens
	}
	if c.Context.Timeout == 0 {
		c.Context.Timeout = def.Context.Timeout
	}
	if c.Reference.Endpoint == "" {
		c.Reference.Endpoint = def.Reference.Endpoint
	}
	if c.Reference.Timeout == 0 {
		c.Reference.Timeout = def.Reference.Timeout
	}
	if c.Pipeline.SummaryEvery == 0 {
		c.Pipeline.SummaryEvery = def.Pipeline.SummaryEvery
	}
	if c.Pipeline.TopTopics == 0 {
		c.Pipeline.TopTopics = def.Pipeline.TopTopics
	}
	if c.Pipeline.WindowQueueSize == 0 {
		c.Pipeline.WindowQueueSize = def.Pipeline.WindowQueueSize
	}
}

// ResolveAPIKey returns the credential for a provider, preferring the config
// file over environment variables.
func (c *Config) ResolveAPIKey(provider string) string {
	if p, ok := c.Providers[provider]; ok && p.APIKey != "" {
		return p.APIKey
	}
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// ResolveSpotifyCredentials returns the client id/secret pair, preferring the
// config file over environment variables.
func (c *Config) ResolveSpotifyCredentials() (string, string) {
	if p, ok := c.Providers["spotify"]; ok && p.ClientID != "" && p.ClientSecret != "" {
		return p.ClientID, p.ClientSecret
	}
	return os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET")
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	configContent := `# Podsight Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied without daemon restart.

# HTTP Server Configuration
[server]
  listen_addr = "127.0.0.1:8264"  # Address for the SSE/prompt API
  dev_mode = false                # Allow prompt updates over HTTP

# Audio Decode Configuration
[audio]
  window_seconds = 15             # Duration of each transcript segment
  buffer_size = 4096              # Read size for decoded PCM chunks
  channel_buffer_size = 20        # Decoded frame buffer (frames to queue)
  ffmpeg_path = "ffmpeg"          # Path to the ffmpeg binary

# Speech Transcription Configuration
[transcription]
  provider = "openai"             # Transcription service ("openai" only currently supported)
  model = "whisper-1"             # OpenAI model name ("whisper-1" recommended)
  language = ""                   # Language code (empty for auto-detect, "en", "it", etc.)
  timeout = "30s"                 # Per-segment transcription deadline

# Context Generation Configuration
[context]
  provider_order = ["anthropic", "openai"]   # Tried in order; missing keys are skipped
  anthropic_model = "claude-3-sonnet-20240229"
  openai_model = "gpt-3.5-turbo"
  max_tokens = 150                # Token budget per context call
  timeout = "20s"                 # Per-provider deadline before trying the next

# Encyclopedia Reference Configuration
[reference]
  enabled = true                  # Look up a Wikipedia article per new topic
  dedup_lookups = true            # Skip lookups for topics already seen this session
  endpoint = "https://en.wikipedia.org/w/api.php"
  timeout = "10s"

# Pipeline Behavior
[pipeline]
  preliminary_emit = true         # Emit transcript-only segments before enrichment
  summary_every = 4               # Rollup summary cadence (finalized segments)
  top_topics = 5                  # Size of the running topic ranking
  window_queue_size = 16          # Windows buffered while enrichment is in flight

# Provider credentials (or use OPENAI_API_KEY / ANTHROPIC_API_KEY /
# SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET environment variables)
[providers.openai]
  api_key = ""

[providers.anthropic]
  api_key = ""

[providers.spotify]
  client_id = ""
  client_secret = ""
`

	if _, err := file.WriteString(configContent); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
