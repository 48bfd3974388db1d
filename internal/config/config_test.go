package config

import (
	"strings"
	"testing"
	"time"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8264",
		},
		Audio: AudioConfig{
			WindowSeconds:     15,
			BufferSize:        4096,
			ChannelBufferSize: 20,
			FFmpegPath:        "ffmpeg",
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Timeout:  30 * time.Second,
		},
		Context: ContextConfig{
			ProviderOrder:  []string{"anthropic", "openai"},
			AnthropicModel: "claude-3-sonnet-20240229",
			OpenAIModel:    "gpt-3.5-turbo",
			MaxTokens:      150,
			Timeout:        20 * time.Second,
		},
		Reference: ReferenceConfig{
			Enabled:      true,
			DedupLookups: true,
			Endpoint:     "https://en.wikipedia.org/w/api.php",
			Timeout:      10 * time.Second,
		},
		Pipeline: PipelineConfig{
			PreliminaryEmit: true,
			SummaryEvery:    4,
			TopTopics:       5,
			WindowQueueSize: 16,
		},
		Providers: map[string]ProviderConfig{
			"openai":    {APIKey: "sk-test-key"},
			"anthropic": {APIKey: "test-anthropic-key"},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "empty listen addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: "listen_addr",
		},
		{
			name:    "zero window seconds",
			mutate:  func(c *Config) { c.Audio.WindowSeconds = 0 },
			wantErr: "window_seconds",
		},
		{
			name:    "unsupported transcription provider",
			mutate:  func(c *Config) { c.Transcription.Provider = "vosk" },
			wantErr: "transcription.provider",
		},
		{
			name:    "missing openai key",
			mutate:  func(c *Config) { delete(c.Providers, "openai") },
			wantErr: "OpenAI API key",
		},
		{
			name:    "empty provider order",
			mutate:  func(c *Config) { c.Context.ProviderOrder = nil },
			wantErr: "provider_order",
		},
		{
			name:    "unknown context provider",
			mutate:  func(c *Config) { c.Context.ProviderOrder = []string{"cohere"} },
			wantErr: "provider_order",
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Context.MaxTokens = 0 },
			wantErr: "max_tokens",
		},
		{
			name:    "reference enabled without endpoint",
			mutate:  func(c *Config) { c.Reference.Endpoint = "" },
			wantErr: "reference.endpoint",
		},
		{
			name: "reference disabled ignores endpoint",
			mutate: func(c *Config) {
				c.Reference.Enabled = false
				c.Reference.Endpoint = ""
			},
			wantErr: "",
		},
		{
			name:    "zero summary cadence",
			mutate:  func(c *Config) { c.Pipeline.SummaryEvery = 0 },
			wantErr: "summary_every",
		},
		{
			name:    "zero window queue",
			mutate:  func(c *Config) { c.Pipeline.WindowQueueSize = 0 },
			wantErr: "window_queue_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			cfg := createTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	cfg := createTestConfig()

	if got := cfg.ResolveAPIKey("openai"); got != "sk-test-key" {
		t.Errorf("ResolveAPIKey(openai) = %q, want sk-test-key", got)
	}
	if got := cfg.ResolveAPIKey("anthropic"); got != "test-anthropic-key" {
		t.Errorf("ResolveAPIKey(anthropic) = %q, want test-anthropic-key", got)
	}

	// Environment fallback when config has no key.
	delete(cfg.Providers, "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	if got := cfg.ResolveAPIKey("anthropic"); got != "env-key" {
		t.Errorf("ResolveAPIKey(anthropic) = %q, want env-key", got)
	}

	if got := cfg.ResolveAPIKey("unknown"); got != "" {
		t.Errorf("ResolveAPIKey(unknown) = %q, want empty", got)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Audio.WindowSeconds != 15 {
		t.Errorf("WindowSeconds = %d, want 15", cfg.Audio.WindowSeconds)
	}
	if cfg.Pipeline.SummaryEvery != 4 {
		t.Errorf("SummaryEvery = %d, want 4", cfg.Pipeline.SummaryEvery)
	}
	if cfg.Pipeline.TopTopics != 5 {
		t.Errorf("TopTopics = %d, want 5", cfg.Pipeline.TopTopics)
	}
	if len(cfg.Context.ProviderOrder) != 2 || cfg.Context.ProviderOrder[0] != "anthropic" {
		t.Errorf("ProviderOrder = %v, want [anthropic openai]", cfg.Context.ProviderOrder)
	}

	// Explicit values survive.
	cfg2 := &Config{Audio: AudioConfig{WindowSeconds: 30}}
	cfg2.applyDefaults()
	if cfg2.Audio.WindowSeconds != 30 {
		t.Errorf("WindowSeconds = %d, want 30", cfg2.Audio.WindowSeconds)
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate with a key set, got: %v", err)
	}
}
