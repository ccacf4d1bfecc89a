package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/ytget/yt-bw/internal/config"
	"github.com/ytget/yt-bw/internal/convert"
	"github.com/ytget/yt-bw/internal/download"
	"github.com/ytget/yt-bw/internal/metrics"
	"github.com/ytget/yt-bw/internal/platform"
	"github.com/ytget/yt-bw/internal/probe"
	"github.com/ytget/yt-bw/internal/server"
	"github.com/ytget/yt-bw/internal/session"
	"github.com/ytget/yt-bw/internal/storage"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	MetricsNamespace  = "ytbw"
	JanitorInterval   = 10 * time.Minute
	ShutdownTimeout   = 15 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	workDir := flag.String("workdir", "", "working directory (overrides WORK_DIR)")
	flag.Parse()

	log.Printf("INFO: ytbw-server v%s starting...", version)

	cfg := config.LoadServerConfig()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *workDir != "" {
		cfg.WorkDir = *workDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("ERROR: invalid configuration: %v", err)
	}
	if err := platform.CreateDirectoryIfNotExists(cfg.WorkDir); err != nil {
		log.Fatalf("ERROR: failed to ensure work dir %s: %v", cfg.WorkDir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	network := cfg.NetworkOptions()

	prober, err := probe.New(cfg.ProbeBackend, cfg.YTDLPPath, network)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	converter := convert.NewService(convert.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		VideoCodec:  cfg.VideoCodec,
		Threads:     cfg.ConvertThreads,
	})
	planner := download.NewPlanner(download.NewYTDLPEngine(cfg.YTDLPPath), converter, cfg.WorkDir, network)

	deps := session.Deps{
		Prober:    prober,
		Acquirer:  planner,
		Converter: converter,
		Expander:  platform.NewPlaylistExpander(),
	}

	var redisClient *redis.Client
	if client := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
		if err := session.PingRedis(ctx, client); err != nil {
			log.Printf("WARN: Redis at %s unavailable, keeping sessions in memory: %v", cfg.RedisAddr, err)
			client.Close()
		} else {
			redisClient = client
			defer redisClient.Close()
			deps.Store = session.NewRedisStore(redisClient, cfg.SessionTTL)
			log.Printf("INFO: Sessions stored in Redis at %s", cfg.RedisAddr)
		}
	}
	memStore := session.NewMemoryStore(cfg.SessionTTL)
	if deps.Store == nil {
		deps.Store = memStore
	}

	if cfg.PublishEnabled() {
		publisher, err := storage.NewS3Publisher(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PresignTTL:      cfg.S3PresignTTL,
		})
		if err != nil {
			log.Fatalf("ERROR: failed to create S3 publisher: %v", err)
		}
		deps.Publisher = publisher
		log.Printf("INFO: Publishing converted videos to bucket %s", cfg.S3Bucket)
	}

	opts := server.Options{SessionTTL: cfg.SessionTTL}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New(MetricsNamespace, prometheus.DefaultRegisterer)
		opts.MetricsHandler = promhttp.Handler()
	}

	flow := session.NewFlow(deps, cfg.JobTimeout)
	srv, err := server.New(flow, server.NewRateLimiter(cfg.RateLimitRPM, redisClient), opts)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	go janitor(ctx, cfg, memStore)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARN: shutdown: %v", err)
		}
	}()

	log.Printf("INFO: Listening on %s (work dir %s, probe backend %s)", cfg.ListenAddr, cfg.WorkDir, cfg.ProbeBackend)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("ERROR: %v", err)
	}
	log.Printf("INFO: Server stopped")
}

// janitor drops expired sessions and files older than a session lifetime
func janitor(ctx context.Context, cfg *config.ServerConfig, store *session.MemoryStore) {
	ticker := time.NewTicker(JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Printf("INFO: Dropped %d expired sessions", n)
			}
			n, err := platform.RemoveStale(cfg.WorkDir, cfg.SessionTTL+cfg.JobTimeout)
			if err != nil {
				log.Printf("WARN: Failed to clean %s: %v", cfg.WorkDir, err)
			}
			if n > 0 {
				log.Printf("INFO: Removed %d stale files from %s", n, cfg.WorkDir)
			}
		}
	}
}
