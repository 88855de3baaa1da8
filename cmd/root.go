package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "vacancy-matcher"
)

type Config struct {
	Catalog *CatalogConfig `mapstructure:"catalog"`
	Filters *FiltersConfig `mapstructure:"filters"`
	AI      *AIConfig      `mapstructure:"ai"`
	Server  *ServerConfig  `mapstructure:"server"`
}

type CatalogConfig struct {
	PostingsFile string `mapstructure:"postings-file"`
	CoursesFile  string `mapstructure:"courses-file"`
	StripHTML    bool   `mapstructure:"strip-html"`
}

type FiltersConfig struct {
	MinimumScore float64 `mapstructure:"minimum-score"`
	Limit        int     `mapstructure:"limit"`
	ExcludeFile  string  `mapstructure:"exclude-file"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Top     int           `mapstructure:"top"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Listen      string `mapstructure:"listen"`
	CORSOrigins string `mapstructure:"cors-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vacancy-matcher ranks job postings against a résumé and recommends courses for missing skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional
	_ = godotenv.Load()

	bindEnv("catalog.postings-file", "VM_POSTINGS_FILE")
	bindEnv("catalog.courses-file", "VM_COURSES_FILE")
	bindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE")
	bindEnv("server.listen", "VM_LISTEN")

	viper.SetDefault("catalog.postings-file", "vacantes.json")
	viper.SetDefault("catalog.courses-file", "cursos.json")
	viper.SetDefault("ai.top", 3)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("server.listen", ":5000")
	viper.SetDefault("server.cors-origins", "*")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vacancy-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("postings", "", "postings catalog file (default vacantes.json)")
	rootCmd.PersistentFlags().String("courses", "", "courses catalog file (default cursos.json)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog.postings-file", rootCmd.PersistentFlags().Lookup("postings"))
	viper.BindPFlag("catalog.courses-file", rootCmd.PersistentFlags().Lookup("courses"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: defaults, env and flags are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Catalog == nil {
		config.Catalog = &CatalogConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
