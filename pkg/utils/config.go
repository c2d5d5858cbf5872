package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "CATALOG"

// Config is shared by the API server and catalogctl. Precedence, highest
// first: flags bound by the caller, CATALOG_* environment (and .env), the
// .productcatalog config file, defaults.
type Config struct {
	Port        string
	CatalogPath string
	BackupPath  string
	ImagesDir   string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	HistoryDB   string
	WatchImages bool

	ConfigFile string
}

// NewViper returns a viper instance with defaults, env bindings and the
// optional config file already read. configFile overrides the search path.
func NewViper(configFile string) (*viper.Viper, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// PORT is the conventional variable for hosted deployments.
	if err := v.BindEnv("port", EnvPrefix+"_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".productcatalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("catalog_path", "products.json")
	v.SetDefault("backup_path", "")
	v.SetDefault("images_dir", filepath.Join("public", "images"))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("history_db", "")
	v.SetDefault("watch_images", true)
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:        strings.TrimSpace(v.GetString("port")),
		CatalogPath: v.GetString("catalog_path"),
		BackupPath:  v.GetString("backup_path"),
		ImagesDir:   v.GetString("images_dir"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		CORSOrigins: splitList(v.GetStringSlice("cors_origins")),
		HistoryDB:   v.GetString("history_db"),
		WatchImages: v.GetBool("watch_images"),
		ConfigFile:  v.ConfigFileUsed(),
	}

	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		return Config{}, fmt.Errorf("invalid port %q", cfg.Port)
	}
	if cfg.CatalogPath == "" {
		return Config{}, errors.New("catalog_path must not be empty")
	}
	if cfg.ImagesDir == "" {
		return Config{}, errors.New("images_dir must not be empty")
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = cfg.CatalogPath + ".bak"
	}
	if cfg.HistoryDB == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = "."
		}
		cfg.HistoryDB = filepath.Join(home, ".productcatalog", "history.db")
	}
	return cfg, nil
}

// LoadConfig is NewViper followed by FromViper.
func LoadConfig(configFile string) (Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func loadEnvFiles() {
	// .env.local wins over .env; neither overrides the real environment
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
