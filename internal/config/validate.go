package config

import "fmt"

func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("invalid server.listen_addr: empty")
	}

	if c.Audio.WindowSeconds <= 0 {
		return fmt.Errorf("invalid audio.window_seconds: %d", c.Audio.WindowSeconds)
	}
	if c.Audio.BufferSize <= 0 {
		return fmt.Errorf("invalid audio.buffer_size: %d", c.Audio.BufferSize)
	}
	if c.Audio.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid audio.channel_buffer_size: %d", c.Audio.ChannelBufferSize)
	}
	if c.Audio.FFmpegPath == "" {
		return fmt.Errorf("invalid audio.ffmpeg_path: empty")
	}

	if c.Transcription.Provider != "openai" {
		return fmt.Errorf("unsupported transcription.provider: %s (must be openai)", c.Transcription.Provider)
	}
	if c.Transcription.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}
	if c.Transcription.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", c.Transcription.Timeout)
	}
	if c.ResolveAPIKey("openai") == "" {
		return fmt.Errorf("OpenAI API key required: not found in config (providers.openai.api_key) or environment variable (OPENAI_API_KEY)")
	}

	if len(c.Context.ProviderOrder) == 0 {
		return fmt.Errorf("invalid context.provider_order: empty")
	}
	validContextProviders := map[string]bool{"anthropic": true, "openai": true}
	for _, p := range c.Context.ProviderOrder {
		if !validContextProviders[p] {
			return fmt.Errorf("invalid context.provider_order: unknown provider %q (must be anthropic or openai)", p)
		}
	}
	if c.Context.MaxTokens <= 0 {
		return fmt.Errorf("invalid context.max_tokens: %d", c.Context.MaxTokens)
	}
	if c.Context.Timeout <= 0 {
		return fmt.Errorf("invalid context.timeout: %v", c.Context.Timeout)
	}

	if c.Reference.Enabled {
		if c.Reference.Endpoint == "" {
			return fmt.Errorf("invalid reference.endpoint: empty")
		}
		if c.Reference.Timeout <= 0 {
			return fmt.Errorf("invalid reference.timeout: %v", c.Reference.Timeout)
		}
	}

	if c.Pipeline.SummaryEvery <= 0 {
		return fmt.Errorf("invalid pipeline.summary_every: %d", c.Pipeline.SummaryEvery)
	}
	if c.Pipeline.TopTopics <= 0 {
		return fmt.Errorf("invalid pipeline.top_topics: %d", c.Pipeline.TopTopics)
	}
	if c.Pipeline.WindowQueueSize <= 0 {
		return fmt.Errorf("invalid pipeline.window_queue_size: %d", c.Pipeline.WindowQueueSize)
	}

	return nil
}
