// Package daemon runs the long-lived podsight process: the HTTP API, the
// control socket, and the hot-reloading config and prompt watchers.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/matteoferrigno/podsight/internal/audio"
	"github.com/matteoferrigno/podsight/internal/bus"
	"github.com/matteoferrigno/podsight/internal/config"
	"github.com/matteoferrigno/podsight/internal/enricher"
	"github.com/matteoferrigno/podsight/internal/pipeline"
	"github.com/matteoferrigno/podsight/internal/prompt"
	"github.com/matteoferrigno/podsight/internal/reference"
	"github.com/matteoferrigno/podsight/internal/server"
	"github.com/matteoferrigno/podsight/internal/source"
	"github.com/matteoferrigno/podsight/internal/transcriber"
)

type Daemon struct {
	ctx    context.Context
	cancel context.CancelFunc

	manager *config.Manager
	prompts *prompt.Store
	srv     *server.Server

	activeStreams atomic.Int64
}

func New() (*Daemon, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	prompts := prompt.NewStore(configDir)

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		ctx:     ctx,
		cancel:  cancel,
		manager: manager,
		prompts: prompts,
	}

	cfg := manager.GetConfig()
	d.srv = server.New(
		server.Config{ListenAddr: cfg.Server.ListenAddr, DevMode: cfg.Server.DevMode},
		d.buildCoordinator,
		d.buildSourceResolver(),
		prompts,
	)
	return d, nil
}

// buildCoordinator assembles a fresh pipeline from the current configuration.
// Called once per stream request, so config edits apply to the next stream.
func (d *Daemon) buildCoordinator() (*pipeline.Coordinator, error) {
	cfg := d.manager.GetConfig()

	transcribeService, err := transcriber.NewService(transcriber.Config{
		Provider:      cfg.Transcription.Provider,
		APIKey:        cfg.ResolveAPIKey("openai"),
		Model:         cfg.Transcription.Model,
		Language:      cfg.Transcription.Language,
		Timeout:       cfg.Transcription.Timeout,
		WindowSeconds: cfg.Audio.WindowSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("build transcriber: %w", err)
	}

	providers, err := enricher.BuildChain(enricher.ChainConfig{
		ProviderOrder:   cfg.Context.ProviderOrder,
		AnthropicAPIKey: cfg.ResolveAPIKey("anthropic"),
		AnthropicModel:  cfg.Context.AnthropicModel,
		OpenAIAPIKey:    cfg.ResolveAPIKey("openai"),
		OpenAIModel:     cfg.Context.OpenAIModel,
		MaxTokens:       cfg.Context.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("build context providers: %w", err)
	}
	generator := enricher.New(providers, d.prompts, cfg.Context.Timeout)

	var resolver pipeline.ReferenceResolver = disabledResolver{}
	if cfg.Reference.Enabled {
		client := reference.NewClient(cfg.Reference.Endpoint, cfg.Reference.Timeout)
		resolver = reference.NewResolver(client, cfg.Reference.DedupLookups)
	}

	decoder := audio.NewDecoder(audio.DecoderConfig{
		BufferSize:        cfg.Audio.BufferSize,
		ChannelBufferSize: cfg.Audio.ChannelBufferSize,
		FFmpegPath:        cfg.Audio.FFmpegPath,
	})

	coordinator := pipeline.New(pipeline.Options{
		WindowSeconds:   cfg.Audio.WindowSeconds,
		PreliminaryEmit: cfg.Pipeline.PreliminaryEmit,
		SummaryEvery:    cfg.Pipeline.SummaryEvery,
		TopTopics:       cfg.Pipeline.TopTopics,
		WindowQueueSize: cfg.Pipeline.WindowQueueSize,
	}, &countedSource{Decoder: decoder, counter: &d.activeStreams},
		transcribeService, generator, resolver)

	return coordinator, nil
}

func (d *Daemon) buildSourceResolver() *source.Resolver {
	cfg := d.manager.GetConfig()
	clientID, clientSecret := cfg.ResolveSpotifyCredentials()
	if clientID == "" || clientSecret == "" {
		return source.NewResolver(nil)
	}
	return source.NewResolver(source.NewSpotifyClient(clientID, clientSecret))
}

// Run blocks until a quit command or signal arrives.
func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if err := d.manager.StartWatching(d.ctx); err != nil {
		log.Printf("daemon: config watching disabled: %v", err)
	}
	defer d.manager.Stop()

	if err := d.prompts.StartWatching(d.ctx); err != nil {
		log.Printf("daemon: prompt watching disabled: %v", err)
	}
	defer d.prompts.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("daemon: received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- d.srv.Start() }()

	go func() {
		<-d.ctx.Done()
		ln.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("daemon: server shutdown: %v", err)
		}
	}()

	log.Printf("daemon: started, control socket ready")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("daemon: shutdown requested")
				return <-serveErr
			}
			select {
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			default:
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch line[0] {
	case bus.CmdStatus:
		cfg := d.manager.GetConfig()
		fmt.Fprintf(c, "STATUS listen=%s streams=%d\n",
			cfg.Server.ListenAddr, d.activeStreams.Load())
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("daemon: unknown command: %c", line[0])
		fmt.Fprintf(c, "ERR unknown=%q\n", line[0])
	}
}

// countedSource tracks how many decode streams are live for status reporting.
type countedSource struct {
	*audio.Decoder
	counter *atomic.Int64
	started atomic.Bool
}

func (s *countedSource) Start(ctx context.Context, url string) (<-chan audio.Frame, <-chan error, error) {
	frames, errs, err := s.Decoder.Start(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	s.counter.Add(1)
	s.started.Store(true)
	return frames, errs, nil
}

func (s *countedSource) Stop() error {
	err := s.Decoder.Stop()
	if s.started.CompareAndSwap(true, false) {
		s.counter.Add(-1)
	}
	return err
}

// disabledResolver is used when reference lookups are turned off.
type disabledResolver struct{}

func (disabledResolver) Resolve(ctx context.Context, topic string) *reference.Reference {
	return nil
}
