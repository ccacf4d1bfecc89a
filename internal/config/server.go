package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ytget/yt-bw/internal/model"
)

// Probe backends
const (
	ProbeBackendYTDLP     = "ytdlp"
	ProbeBackendInnertube = "innertube"
)

// Server defaults
const (
	DefaultListenAddr   = ":8501"
	DefaultWorkDir      = "temp"
	DefaultProbeBackend = ProbeBackendYTDLP
	DefaultVideoCodec   = "libx264"
	DefaultThreads      = 4
	DefaultJobTimeout   = 30 * time.Minute
	DefaultSessionTTL   = 24 * time.Hour
	DefaultRateLimitRPM = 60
	DefaultPresignTTL   = time.Hour
	DefaultEnvFile      = ".env"
)

// ServerConfig is the configuration of the web server, read from the environment
type ServerConfig struct {
	ListenAddr string
	WorkDir    string

	YTDLPPath    string
	FFmpegPath   string
	FFprobePath  string
	ProbeBackend string

	CookieFile     string
	UserAgent      string
	AcceptLanguage string
	ForceIPv4      bool

	VideoCodec     string
	ConvertThreads int
	JobTimeout     time.Duration

	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimitRPM  int

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PresignTTL      time.Duration

	MetricsEnabled bool
}

// LoadServerConfig loads an optional .env file and reads the environment.
// Variables already set in the environment win over the file.
func LoadServerConfig() *ServerConfig {
	envFile := GetEnv("ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: failed to load %s: %v", envFile, err)
	}

	return &ServerConfig{
		ListenAddr: GetEnv("LISTEN_ADDR", DefaultListenAddr),
		WorkDir:    GetEnv("WORK_DIR", DefaultWorkDir),

		YTDLPPath:    GetEnv("YTDLP_PATH", ""),
		FFmpegPath:   GetEnv("FFMPEG_PATH", ""),
		FFprobePath:  GetEnv("FFPROBE_PATH", ""),
		ProbeBackend: GetEnv("PROBE_BACKEND", DefaultProbeBackend),

		CookieFile:     GetEnv("COOKIE_FILE", ""),
		UserAgent:      GetEnv("HTTP_USER_AGENT", ""),
		AcceptLanguage: GetEnv("HTTP_ACCEPT_LANGUAGE", ""),
		ForceIPv4:      GetEnvBool("FORCE_IPV4", false),

		VideoCodec:     GetEnv("VIDEO_CODEC", DefaultVideoCodec),
		ConvertThreads: GetEnvInt("CONVERT_THREADS", DefaultThreads),
		JobTimeout:     GetEnvDuration("JOB_TIMEOUT", DefaultJobTimeout),

		SessionTTL:    GetEnvDuration("SESSION_TTL", DefaultSessionTTL),
		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),
		RateLimitRPM:  GetEnvInt("RATE_LIMIT_RPM", DefaultRateLimitRPM),

		S3Bucket:          GetEnv("S3_BUCKET", ""),
		S3Region:          GetEnv("S3_REGION", ""),
		S3Endpoint:        GetEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     GetEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: GetEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PresignTTL:      GetEnvDuration("S3_PRESIGN_TTL", DefaultPresignTTL),

		MetricsEnabled: GetEnvBool("METRICS_ENABLED", true),
	}
}

// Validate rejects settings the server cannot start with
func (c *ServerConfig) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("LISTEN_ADDR must not be empty"))
	}
	if c.WorkDir == "" {
		errs = append(errs, errors.New("WORK_DIR must not be empty"))
	}
	if c.ProbeBackend != ProbeBackendYTDLP && c.ProbeBackend != ProbeBackendInnertube {
		errs = append(errs, fmt.Errorf("PROBE_BACKEND must be %q or %q, got %q", ProbeBackendYTDLP, ProbeBackendInnertube, c.ProbeBackend))
	}
	if c.ConvertThreads <= 0 {
		errs = append(errs, fmt.Errorf("CONVERT_THREADS must be positive, got %d", c.ConvertThreads))
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, fmt.Errorf("JOB_TIMEOUT must be positive, got %s", c.JobTimeout))
	}
	if c.RateLimitRPM < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPM must not be negative, got %d", c.RateLimitRPM))
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"))
	}
	return errors.Join(errs...)
}

// NetworkOptions returns the options shared by probe and download
func (c *ServerConfig) NetworkOptions() model.NetworkOptions {
	return networkOptions(c.CookieFile, c.UserAgent, c.AcceptLanguage, c.ForceIPv4)
}

// PublishEnabled reports whether converted files go to S3
func (c *ServerConfig) PublishEnabled() bool {
	return c.S3Bucket != ""
}

func networkOptions(cookieFile, userAgent, acceptLanguage string, forceIPv4 bool) model.NetworkOptions {
	opts := model.NetworkOptions{CookieFile: cookieFile, ForceIPv4: forceIPv4}
	if userAgent != "" || acceptLanguage != "" {
		opts.HTTPHeaders = make(map[string]string)
	}
	if userAgent != "" {
		opts.HTTPHeaders["User-Agent"] = userAgent
	}
	if acceptLanguage != "" {
		opts.HTTPHeaders["Accept-Language"] = acceptLanguage
	}
	return opts
}
