package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/media"
	"github.com/K3das/clementine/messages"
	"github.com/K3das/clementine/store"
	"github.com/K3das/clementine/utils"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var DefaultAllowedMentions = &discordgo.MessageAllowedMentions{
	Parse:       []discordgo.AllowedMentionType{},
	RepliedUser: true,
}

type DiscordExecutionError struct {
	Message string
	Err     error
	// If true, do not log this error
	UserError bool
}

func (err DiscordExecutionError) Error() string {
	if err.Err == nil {
		return err.Message
	}
	return err.Err.Error()
}

func (err DiscordExecutionError) Unwrap() error {
	return err.Err
}

// Limits bound what a single transcription may consume.
type Limits struct {
	// max attachment file size in bytes
	MaxInputFileSize int `env:"MAX_INPUT_FILE_SIZE" envDefault:"26214400"`
	// max size of the normalized audio sent to the model
	MaxOutputFileSize int `env:"MAX_OUTPUT_FILE_SIZE" envDefault:"26214400"`
	// the hard limit for the number of seconds audio can be before it's not transcribed
	MaxDuration float64 `env:"MAX_DURATION" envDefault:"1800"`

	Timeout       time.Duration `env:"TRANSCRIPTION_TIMEOUT" envDefault:"10m"`
	MaxConcurrent int64         `env:"MAX_CONCURRENT_TRANSCRIPTIONS" envDefault:"2"`
}

type DiscordBot struct {
	log *zap.Logger

	discord  *discordgo.Session
	store    *store.Store
	messages *messages.MessageProvider
	asrAPI   asr.SpeechRecognitionAPI

	ffmpeg *media.FFmpeg
	http   *http.Client

	limits          Limits
	defaultLanguage string
	jobs            *semaphore.Weighted

	self *discordgo.User

	commands   map[string]*discordgo.ApplicationCommand
	commandsMu sync.RWMutex

	knownServers map[string]struct{}
}

type DiscordBotOptions struct {
	ParentLogger *zap.Logger
	Store        *store.Store
	Messages     *messages.MessageProvider
	ASR          asr.SpeechRecognitionAPI
	Limits       Limits

	// DefaultLanguage is used when /transcribe doesn't specify one,
	// asr.AutoLanguage to detect it
	DefaultLanguage string

	Token string
	// Servers limits the bot to these guilds, empty allows every guild and DMs
	Servers []string
}

type DiscordBotOptionsExtraOptions func(*DiscordBot)

func WithFFmpeg(ffmpeg *media.FFmpeg) DiscordBotOptionsExtraOptions {
	return func(b *DiscordBot) {
		b.ffmpeg = ffmpeg
	}
}

func WithHTTPClient(client *http.Client) DiscordBotOptionsExtraOptions {
	return func(b *DiscordBot) {
		b.http = client
	}
}

func NewDiscordBot(ctx context.Context, options DiscordBotOptions, extraOptions ...DiscordBotOptionsExtraOptions) (*DiscordBot, error) {
	maxConcurrent := options.Limits.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	b := &DiscordBot{
		log:   options.ParentLogger.Named("discord_bot"),
		store: options.Store,

		messages: options.Messages,
		asrAPI:   options.ASR,
		ffmpeg:   media.NewFFmpeg(),

		limits:          options.Limits,
		defaultLanguage: options.DefaultLanguage,
		jobs:            semaphore.NewWeighted(maxConcurrent),

		http:         http.DefaultClient,
		knownServers: make(map[string]struct{}),
	}
	for _, option := range extraOptions {
		option(b)
	}

	for _, v := range options.Servers {
		b.knownServers[v] = struct{}{}
	}

	discord, err := discordgo.New("Bot " + options.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discordgo instance: %w", err)
	}
	b.discord = discord
	b.discord.Client = b.http
	b.discord.Identify.Intents = discordgo.IntentsGuilds

	// no handler reads from the state cache
	b.discord.StateEnabled = false

	b.discord.AddHandler(b.handleReady)
	b.discord.AddHandler(b.handleInteractionCreate)

	b.discord.Identify.Presence = discordgo.GatewayStatusUpdate{
		Game: discordgo.Activity{
			Name:  "🍊",
			Type:  discordgo.ActivityTypeCustom,
			State: "/transcribe",
		},
	}

	b.self, err = b.discord.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("checking discord session: %w", err)
	}

	b.log = b.log.With(zap.String("bot_id", b.self.ID))
	b.log.Info("discord api works")

	err = b.registerCommands(ctx)
	if err != nil {
		return nil, fmt.Errorf("registering commands: %w", err)
	}

	return b, nil
}

func (b *DiscordBot) handleReady(s *discordgo.Session, e *discordgo.Ready) {
	b.log.With(zap.Int("guilds", len(e.Guilds))).Info("gateway ready")
}

func (b *DiscordBot) Open() error {
	return b.discord.Open()
}

func (b *DiscordBot) Close() error {
	return b.discord.Close()
}

func (b *DiscordBot) Run(ctx context.Context) error {
	defer utils.PanicRecovery(b.log)

	err := b.Open()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	<-ctx.Done()

	err = b.Close()
	if err != nil {
		return fmt.Errorf("closing discord websocket: %w", err)
	}

	return nil
}

func (b *DiscordBot) isGuildInScope(guildID string) bool {
	if len(b.knownServers) == 0 {
		return true
	}
	_, ok := b.knownServers[guildID]
	return ok
}
