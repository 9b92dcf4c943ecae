package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/K3das/clementine/asr"
	openaiwhisper "github.com/K3das/clementine/asr/openai-whisper"
	workerswhisper "github.com/K3das/clementine/asr/workers-whisper"
	"github.com/K3das/clementine/discord"
	"github.com/K3das/clementine/media"
	"github.com/K3das/clementine/messages"
	"github.com/K3das/clementine/store"
	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var CommitHash = ""

const (
	BackendWorkersWhisper = "workers_whisper"
	BackendOpenAIWhisper  = "openai_whisper"
)

type config struct {
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	DiscordToken string   `env:"DISCORD_TOKEN,required"`
	Servers      []string `env:"SERVERS"`

	ASRBackend      string `env:"ASR_BACKEND" envDefault:"workers_whisper"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"ar"`

	// how long finished transcriptions stay exportable, 0 keeps them forever
	Retention time.Duration `env:"RETENTION" envDefault:"720h"`

	FFmpegBinary  string `env:"FFMPEG_BINARY"`
	FFprobeBinary string `env:"FFPROBE_BINARY"`

	Limits discord.Limits

	WorkersWhisperOptions workerswhisper.WorkersWhisperClientOptions `envPrefix:"ASR_WORKERS_WHISPER_"`
	OpenAIWhisperOptions  openaiwhisper.OpenAIWhisperClientOptions   `envPrefix:"ASR_OPENAI_WHISPER_"`
}

const environmentPrefix = "CLEMENTINE_"
const logLevelEnvKey = environmentPrefix + "LOG_LEVEL"

const retentionInterval = time.Hour

func createLog() *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = ""

	logLevelValue := os.Getenv(logLevelEnvKey)
	logLevel, logLevelErr := zapcore.ParseLevel(logLevelValue)

	if logLevelErr != nil {
		logLevel = zapcore.InfoLevel
	}

	rawLog := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		logLevel,
	)).Named("clementine")

	if CommitHash != "" {
		rawLog = rawLog.With(zap.String("commit", CommitHash))
	}

	if logLevelErr != nil && logLevelValue != "" {
		rawLog.With(zap.String(logLevelEnvKey, logLevelValue)).Warn("unable to parse log level, using INFO")
	}

	return rawLog
}

func newASRClient(cfg config) (asr.SpeechRecognitionAPI, error) {
	switch cfg.ASRBackend {
	case BackendWorkersWhisper:
		return workerswhisper.NewWorkersWhisperClient(cfg.WorkersWhisperOptions)
	case BackendOpenAIWhisper:
		return openaiwhisper.NewOpenAIWhisperClient(cfg.OpenAIWhisperOptions)
	default:
		return nil, fmt.Errorf("unknown asr backend %q", cfg.ASRBackend)
	}
}

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	parentLogger := createLog()
	defer parentLogger.Sync()

	log := parentLogger.Named("main")
	log.With(zap.String("min_log_level", parentLogger.Level().String())).Info("starting")

	cfg := config{}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: environmentPrefix,
	}); err != nil {
		log.Fatal("failed to parse config", zap.Error(err))
	}

	ffmpeg := media.NewFFmpeg(
		media.WithFFmpegBinary(cfg.FFmpegBinary),
		media.WithFFprobeBinary(cfg.FFprobeBinary),
	)
	if err := ffmpeg.CheckBinaries(); err != nil {
		log.Fatal("ffmpeg is not available", zap.Error(err))
	}

	asrClient, err := newASRClient(cfg)
	if err != nil {
		log.Fatal("failed to create asr client", zap.Error(err))
	}
	log.With(zap.String("backend", cfg.ASRBackend)).Info("asr client ready")

	s := store.NewStore(context.Background(), parentLogger)
	err = s.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect store", zap.Error(err))
	}
	defer s.Close()

	messageProvider, err := messages.NewMessageProvider()
	if err != nil {
		log.Fatal("failed to create message provider", zap.Error(err))
	}

	discordBot, err := discord.NewDiscordBot(context.Background(), discord.DiscordBotOptions{
		Token:           cfg.DiscordToken,
		Servers:         cfg.Servers,
		ParentLogger:    parentLogger,
		Store:           s,
		Messages:        messageProvider,
		ASR:             asrClient,
		Limits:          cfg.Limits,
		DefaultLanguage: cfg.DefaultLanguage,
	}, discord.WithFFmpeg(ffmpeg))
	if err != nil {
		log.Fatal("failed to create discord bot", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := errgroup.Group{}

	// Discord bot
	g.Go(func() error {
		defer cancel()

		return discordBot.Run(ctx)
	})

	// Retention
	g.Go(func() error {
		return s.RunRetention(ctx, cfg.Retention, retentionInterval)
	})

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdownSignal:
		cancel()
		log.Info("received signal, shutting down")
	case <-ctx.Done():
		log.Info("context done, shutting down")
	}

	err = g.Wait()
	if err != nil {
		log.Fatal("error group error", zap.Error(err))
	}
}
