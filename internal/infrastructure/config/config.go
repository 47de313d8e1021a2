package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/makerspace/membership-service/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Square    SquareConfig
	Discord   DiscordConfig
	AMQP      AMQPConfig
	Reconcile ReconcileConfig

	RoleSyncWorkers int `env:"ROLE_SYNC_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=makerspace"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	URL      string        `env:"REDIS_URL"`
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	DedupTTL time.Duration `env:"REDIS_DEDUP_TTL, default=72h"`
}

type SquareConfig struct {
	AccessToken         string        `env:"SQUARE_ACCESS_TOKEN"`
	BaseURL             string        `env:"SQUARE_BASE_URL,       default=https://connect.squareup.com"`
	Version             string        `env:"SQUARE_VERSION,        default=2024-04-17"`
	LocationID          string        `env:"SQUARE_LOCATION_ID"`
	WebhookSignatureKey string        `env:"SQUARE_WEBHOOK_SIGNATURE_KEY"`
	NotificationURL     string        `env:"SQUARE_NOTIFICATION_URL"`
	MembershipPlanID    string        `env:"SQUARE_MEMBERSHIP_PLAN_ID"`
	SponsorshipPlanID   string        `env:"SQUARE_SPONSORSHIP_PLAN_ID"`
	MembershipAmount    int64         `env:"SQUARE_MEMBERSHIP_AMOUNT_CENTS, default=5000"`
	Currency            string        `env:"SQUARE_CURRENCY,       default=USD"`
	RedirectURL         string        `env:"SQUARE_REDIRECT_URL"`
	Timeout             time.Duration `env:"SQUARE_TIMEOUT,        default=15s"`
}

type DiscordConfig struct {
	BotToken        string        `env:"DISCORD_BOT_TOKEN"`
	GuildID         string        `env:"DISCORD_GUILD_ID"`
	MemberRoleID    string        `env:"DISCORD_MEMBER_ROLE_ID"`
	MakerRoleID     string        `env:"DISCORD_MAKER_ROLE_ID"`
	HackerRoleID    string        `env:"DISCORD_HACKER_ROLE_ID"`
	ArtistRoleID    string        `env:"DISCORD_ARTIST_ROLE_ID"`
	InviteChannel   string        `env:"DISCORD_INVITE_CHANNEL,   default=welcome"`
	AnnounceChannel string        `env:"DISCORD_ANNOUNCE_CHANNEL, default=announcements"`
	InviteMaxAge    time.Duration `env:"DISCORD_INVITE_MAX_AGE,   default=24h"`
	Timeout         time.Duration `env:"DISCORD_TIMEOUT,          default=10s"`
}

// CreatorRoles maps each creator category to its configured role. Categories
// without a role id are left out and never synced.
func (d DiscordConfig) CreatorRoles() domain.CreatorRoleMap {
	roles := domain.CreatorRoleMap{}
	for category, id := range map[string]string{
		domain.CreatorMaker:  d.MakerRoleID,
		domain.CreatorHacker: d.HackerRoleID,
		domain.CreatorArtist: d.ArtistRoleID,
	} {
		if id != "" {
			roles[category] = id
		}
	}
	return roles
}

type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=membership.events"`
}

type ReconcileConfig struct {
	Schedule    string `env:"RECONCILE_SCHEDULE,     default=@every 1m"`
	BatchSize   int    `env:"RECONCILE_BATCH_SIZE,   default=50"`
	MaxAttempts int    `env:"RECONCILE_MAX_ATTEMPTS, default=5"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Square.AccessToken == "" {
			errs = append(errs, errors.New("SQUARE_ACCESS_TOKEN is required in production"))
		}
		if c.Square.WebhookSignatureKey == "" || c.Square.NotificationURL == "" {
			errs = append(errs, errors.New("SQUARE_WEBHOOK_SIGNATURE_KEY and SQUARE_NOTIFICATION_URL are required in production"))
		}
	}
	if c.Discord.BotToken != "" && c.Discord.GuildID == "" {
		errs = append(errs, errors.New("DISCORD_GUILD_ID is required with DISCORD_BOT_TOKEN"))
	}
	return errors.Join(errs...)
}
