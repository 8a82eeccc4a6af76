package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete nightfall configuration
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Player   PlayerConfig   `mapstructure:"player"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Display  DisplayConfig  `mapstructure:"display"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig controls the table: who plays and how roles are dealt
type GameConfig struct {
	// Roster lists every actor's name in seating order, which is also the
	// speaking order. The human seat must be one of these names.
	Roster []string `mapstructure:"roster"`
	// Saboteurs is the number of saboteurs to deal (0 = max(1, roster/4))
	Saboteurs int `mapstructure:"saboteurs"`
	// Seed makes role assignment, tie-breaks, and offline agents
	// reproducible (0 = random seed per game)
	Seed uint64 `mapstructure:"seed"`
	// Personas maps an actor name to a short personality description that is
	// added to that actor's prompts
	Personas map[string]string `mapstructure:"personas"`
}

// PlayerConfig controls the human seat
type PlayerConfig struct {
	// Name is the actor the human controls or watches
	Name string `mapstructure:"name"`
	// Mode selects how the human takes part
	// Options: "player" (decide for Name), "character_view" (watch as Name),
	// "omniscient" (watch everything)
	Mode string `mapstructure:"mode"`
}

// DispatchConfig controls how decision requests are sent to agents
type DispatchConfig struct {
	// MaxAttempts is how many times one actor's request is tried before the
	// turn fails (default: 3)
	MaxAttempts int `mapstructure:"max_attempts"`
	// RetryWaitMs is the constant wait between attempts in milliseconds (default: 1000)
	RetryWaitMs int `mapstructure:"retry_wait_ms"`
	// MaxParallel bounds concurrent requests in a parallel round (0 = unbounded)
	MaxParallel int `mapstructure:"max_parallel"`
	// AllowPartial keeps the successful slots of a parallel round when some
	// fail, instead of failing the whole round (default: false)
	AllowPartial bool `mapstructure:"allow_partial"`
}

// AgentConfig selects and configures the reasoning agent backend
type AgentConfig struct {
	// Backend is the agent implementation
	// Options: "scripted" (offline), "claude" (CLI), "anthropic" (HTTP API),
	// "openai" (any OpenAI-compatible endpoint)
	Backend string `mapstructure:"backend"`
	// Command is the executable for the "claude" backend (default: "claude")
	Command string `mapstructure:"command"`
	// Model is the model name for API backends
	Model string `mapstructure:"model"`
	// BaseURL overrides the API endpoint for the "openai" backend
	BaseURL string `mapstructure:"base_url"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `mapstructure:"api_key_env"`
	// TimeoutSeconds bounds a single agent call (0 = no limit)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DisplayConfig controls transcript presentation
type DisplayConfig struct {
	// Pacing scales the delay between transcript entries (0 = no delay, 1 = default speed)
	Pacing float64 `mapstructure:"pacing"`
	// Color enables styled output when writing to a terminal (default: true)
	Color bool `mapstructure:"color"`
}

// StoreConfig controls where games are recorded
type StoreConfig struct {
	// Path is the SQLite journal file ("" = do not journal)
	Path string `mapstructure:"path"`
	// TranscriptDir, if set, receives one JSONL transcript per game
	TranscriptDir string `mapstructure:"transcript_dir"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info").
	// Edits to this value are applied while a game is running.
	Level string `mapstructure:"level"`
	// Dir is where debug.log is written ("" = the state directory)
	Dir string `mapstructure:"dir"`
}

// Player modes
const (
	ModePlayer        = "player"
	ModeCharacterView = "character_view"
	ModeOmniscient    = "omniscient"
)

// Agent backends
const (
	BackendScripted  = "scripted"
	BackendClaude    = "claude"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
)

// DefaultRoster is the twelve-seat table used when no roster is configured.
var DefaultRoster = []string{
	"Alder", "Briar", "Cedar", "Dahlia", "Ember", "Fern",
	"Garnet", "Hazel", "Iris", "Juniper", "Kestrel", "Linden",
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Roster:    slices.Clone(DefaultRoster),
			Saboteurs: 0, // Derived from roster size
			Seed:      0, // Random per game
			Personas:  map[string]string{},
		},
		Player: PlayerConfig{
			Name: DefaultRoster[0],
			Mode: ModePlayer,
		},
		Dispatch: DispatchConfig{
			MaxAttempts:  3,
			RetryWaitMs:  1000,
			MaxParallel:  0,
			AllowPartial: false,
		},
		Agent: AgentConfig{
			Backend:        BackendScripted,
			Command:        "claude",
			Model:          "",
			BaseURL:        "",
			APIKeyEnv:      "",
			TimeoutSeconds: 120,
		},
		Display: DisplayConfig{
			Pacing: 1,
			Color:  true,
		},
		Store: StoreConfig{
			Path:          "",
			TranscriptDir: "",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// Persona returns the configured persona for name. Keys are matched
// case-insensitively because viper lowercases map keys.
func (g *GameConfig) Persona(name string) string {
	if p, ok := g.Personas[name]; ok {
		return p
	}
	for k, p := range g.Personas {
		if strings.EqualFold(k, name) {
			return p
		}
	}
	return ""
}

// RetryWait returns the wait between attempts as a time.Duration
func (c *DispatchConfig) RetryWait() time.Duration {
	return time.Duration(c.RetryWaitMs) * time.Millisecond
}

// Timeout returns the per-call timeout as a time.Duration (0 means no limit)
func (c *AgentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIKey reads the backend's API key from the configured environment
// variable, falling back to the backend's conventional variable.
func (c *AgentConfig) APIKey() string {
	env := c.APIKeyEnv
	if env == "" {
		switch c.Backend {
		case BackendAnthropic:
			env = "ANTHROPIC_API_KEY"
		case BackendOpenAI:
			env = "OPENAI_API_KEY"
		}
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Game defaults
	viper.SetDefault("game.roster", defaults.Game.Roster)
	viper.SetDefault("game.saboteurs", defaults.Game.Saboteurs)
	viper.SetDefault("game.seed", defaults.Game.Seed)
	viper.SetDefault("game.personas", defaults.Game.Personas)

	// Player defaults
	viper.SetDefault("player.name", defaults.Player.Name)
	viper.SetDefault("player.mode", defaults.Player.Mode)

	// Dispatch defaults
	viper.SetDefault("dispatch.max_attempts", defaults.Dispatch.MaxAttempts)
	viper.SetDefault("dispatch.retry_wait_ms", defaults.Dispatch.RetryWaitMs)
	viper.SetDefault("dispatch.max_parallel", defaults.Dispatch.MaxParallel)
	viper.SetDefault("dispatch.allow_partial", defaults.Dispatch.AllowPartial)

	// Agent defaults
	viper.SetDefault("agent.backend", defaults.Agent.Backend)
	viper.SetDefault("agent.command", defaults.Agent.Command)
	viper.SetDefault("agent.model", defaults.Agent.Model)
	viper.SetDefault("agent.base_url", defaults.Agent.BaseURL)
	viper.SetDefault("agent.api_key_env", defaults.Agent.APIKeyEnv)
	viper.SetDefault("agent.timeout_seconds", defaults.Agent.TimeoutSeconds)

	// Display defaults
	viper.SetDefault("display.pacing", defaults.Display.Pacing)
	viper.SetDefault("display.color", defaults.Display.Color)

	// Store defaults
	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("store.transcript_dir", defaults.Store.TranscriptDir)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nightfall")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nightfall"
	}
	return filepath.Join(home, ".config", "nightfall")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns where logs and transcripts go by default
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "nightfall")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nightfall"
	}
	return filepath.Join(home, ".local", "state", "nightfall")
}

// LogDir returns the configured log directory, defaulting to StateDir
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return StateDir()
}

// ValidModes returns the list of valid player modes
func ValidModes() []string {
	return []string{ModePlayer, ModeCharacterView, ModeOmniscient}
}

// ValidBackends returns the list of valid agent backends
func ValidBackends() []string {
	return []string{BackendScripted, BackendClaude, BackendAnthropic, BackendOpenAI}
}
