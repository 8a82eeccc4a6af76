package cmd

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "nightfall",
	Short: "A social deduction game played by reasoning agents",
	Long: `Nightfall runs a game of hidden roles between reasoning agents.

Saboteurs pick a victim each night while the Seeker investigates and the
Protector shields. By day everyone talks, a suspect is put on trial, and
the table votes. You can take a seat, watch through one character's eyes,
or watch everything.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/nightfall/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	// API keys usually live in .env next to the config; a missing file is fine.
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("NIGHTFALL")
	// e.g. NIGHTFALL_AGENT_BACKEND for agent.backend
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// levelWatch applies logging.level edits to the running logger.
var levelWatch struct {
	mu     sync.Mutex
	logger *logging.Logger
	once   sync.Once
}

// watchLogLevel starts watching the config file, if one was read, and keeps
// logger's level in step with it.
func watchLogLevel(logger *logging.Logger) {
	levelWatch.mu.Lock()
	levelWatch.logger = logger
	levelWatch.mu.Unlock()

	if viper.ConfigFileUsed() == "" {
		return
	}
	levelWatch.once.Do(func() {
		viper.OnConfigChange(onConfigChange)
		viper.WatchConfig()
	})
}

func onConfigChange(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	levelWatch.mu.Lock()
	logger := levelWatch.logger
	levelWatch.mu.Unlock()
	if logger == nil {
		return
	}

	level := logging.ParseLevel(viper.GetString("logging.level"))
	if level != logger.Level() {
		logger.Info("log level changed", "from", logger.Level(), "to", level, "file", e.Name)
		logger.SetLevel(level)
	}
}
