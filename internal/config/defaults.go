package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8264",
			DevMode:    false,
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
			Language: "",
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
		Providers: make(map[string]ProviderConfig),
	}
}
