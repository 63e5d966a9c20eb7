package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Auth struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"auth"`
	Gen struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"gen"`
	Remote struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"remote"`
	Store struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
	} `mapstructure:"store"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Import struct {
		Dir   string        `mapstructure:"dir"`
		Delay time.Duration `mapstructure:"delay"`
	} `mapstructure:"import"`
	Security struct {
		CookieSecret string `mapstructure:"cookie_secret"`
	} `mapstructure:"security"`
	Render struct {
		ChromePath string `mapstructure:"chrome_path"`
	} `mapstructure:"render"`
}

func (c Config) IsProduction() bool { return c.App.Env == "production" }

var envBindings = map[string]string{
	"app.port":               "APP_PORT",
	"app.env":                "APP_ENV",
	"auth.host":              "AUTH_HOST",
	"gen.host":               "GEN_HOST",
	"remote.timeout":         "REMOTE_TIMEOUT",
	"store.driver":           "STORE_DRIVER",
	"store.path":             "STORE_PATH",
	"redis.addr":             "REDIS_ADDR",
	"redis.password":         "REDIS_PASSWORD",
	"redis.db":               "REDIS_DB",
	"db.dsn":                 "DB_DSN",
	"import.dir":             "IMPORT_DIR",
	"import.delay":           "IMPORT_DELAY",
	"security.cookie_secret": "COOKIE_SECRET",
	"render.chrome_path":     "CHROME_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.env", "development")
	v.SetDefault("auth.host", "http://localhost:3001")
	v.SetDefault("gen.host", "https://resume-gen-backend.onrender.com")
	v.SetDefault("remote.timeout", 60*time.Second)
	v.SetDefault("store.driver", StoreFile)
	v.SetDefault("store.path", "data/state.json")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("import.dir", "data/imports")
	v.SetDefault("import.delay", 1500*time.Millisecond)
}

// LoadConfig reads .env, then config.yaml from the working directory, then
// the environment. Later sources win.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}
	return Load(".")
}

// Load reads config.yaml from dir (if present) and the environment.
func Load(dir string) (cfg Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return cfg, err
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.Auth.Host = strings.TrimRight(cfg.Auth.Host, "/")
	cfg.Gen.Host = strings.TrimRight(cfg.Gen.Host, "/")
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)

	if err = cfg.validate(); err != nil {
		return cfg, err
	}
	if cfg.Security.CookieSecret == "" {
		cfg.Security.CookieSecret = devSecret(cfg)
	}
	return cfg, nil
}

// SecretFile is where a generated development cookie secret is kept,
// next to the file store.
const SecretFile = ".cookie_secret"

// devSecret returns the cookie secret used when none is configured. With a
// persistent store it is read from (or written to) SecretFile so client
// identities outlive a restart; the memory store gets a per-process one.
func devSecret(cfg Config) string {
	if cfg.Store.Driver == StoreMemory || cfg.Store.Path == "" {
		log.Println("warning: COOKIE_SECRET not set, using a per-process secret; client identities reset on restart.")
		return randomSecret()
	}
	path := filepath.Join(filepath.Dir(cfg.Store.Path), SecretFile)
	secret, err := loadOrCreateSecret(path)
	if err != nil {
		log.Printf("WARNING: COOKIE_SECRET not set and %s unusable (%v); using a per-process secret, client identities reset on restart.", path, err)
		return randomSecret()
	}
	log.Printf("warning: COOKIE_SECRET not set, using the development secret in %s.", path)
	return secret
}

func loadOrCreateSecret(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	s := randomSecret()
	if err := os.WriteFile(path, []byte(s+"\n"), 0o600); err != nil {
		return "", err
	}
	return s, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("store.driver %q: want memory, file or redis", c.Store.Driver)
	}
	if c.Remote.Timeout <= 0 {
		return errors.New("remote.timeout must be positive")
	}
	if c.Import.Delay < 0 {
		return errors.New("import.delay must not be negative")
	}
	if c.IsProduction() && c.Security.CookieSecret == "" {
		return errors.New("security.cookie_secret is required in production")
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
