package config

import "time"

type Config struct {
	Server        ServerConfig              `toml:"server"`
	Audio         AudioConfig               `toml:"audio"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Context       ContextConfig             `toml:"context"`
	Reference     ReferenceConfig           `toml:"reference"`
	Pipeline      PipelineConfig            `toml:"pipeline"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds credentials for an external service
type ProviderConfig struct {
	APIKey       string `toml:"api_key"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
	DevMode    bool   `toml:"dev_mode"` // enables prompt updates over HTTP
}

type AudioConfig struct {
	WindowSeconds     int    `toml:"window_seconds"`
	BufferSize        int    `toml:"buffer_size"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
	FFmpegPath        string `toml:"ffmpeg_path"`
}

type TranscriptionConfig struct {
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	Language string        `toml:"language"`
	Timeout  time.Duration `toml:"timeout"`
}

// ContextConfig configures the context-generation provider chain
type ContextConfig struct {
	ProviderOrder  []string      `toml:"provider_order"`
	AnthropicModel string        `toml:"anthropic_model"`
	OpenAIModel    string        `toml:"openai_model"`
	MaxTokens      int           `toml:"max_tokens"`
	Timeout        time.Duration `toml:"timeout"` // per provider call
}

type ReferenceConfig struct {
	Enabled      bool          `toml:"enabled"`
	DedupLookups bool          `toml:"dedup_lookups"`
	Endpoint     string        `toml:"endpoint"`
	Timeout      time.Duration `toml:"timeout"`
}

type PipelineConfig struct {
	PreliminaryEmit bool `toml:"preliminary_emit"`
	SummaryEvery    int  `toml:"summary_every"`
	TopTopics       int  `toml:"top_topics"`
	WindowQueueSize int  `toml:"window_queue_size"`
}
