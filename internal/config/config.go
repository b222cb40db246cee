// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Mongo   Mongo   `yaml:"mongo"`
	Storage Storage `yaml:"storage"`
	Uploads Uploads `yaml:"uploads"`
	Auth    Auth    `yaml:"auth"`
	Cart    Cart    `yaml:"cart"`
}

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowOrigins   []string `yaml:"allowOrigins"`
	MaxUploadBytes int64    `yaml:"maxUploadBytes"`
}

type Mongo struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

type Storage struct {
	Driver string `yaml:"driver"`
}

type Uploads struct {
	Dir string `yaml:"dir"`
}

type Auth struct {
	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	BcryptCost int           `yaml:"bcryptCost"`
}

// Cart holds the checkout policy. With ClearOnOrder false the cart
// survives order creation so the customer can reorder from it.
type Cart struct {
	ClearOnOrder bool `yaml:"clearOnOrder"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Addr:           ":44800",
			AllowOrigins:   []string{"*"},
			MaxUploadBytes: 8 << 20,
		},
		Mongo: Mongo{
			URI:            "mongodb://127.0.0.1:27017",
			Database:       "mebelmart_flut",
			ConnectTimeout: 10 * time.Second,
		},
		Storage: Storage{Driver: DriverMongo},
		Uploads: Uploads{Dir: "uploads/products"},
		Auth: Auth{
			JWTSecret:  "change-me",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 10,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path; keys absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing YAML config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.HTTP.Addr = ":" + v
	}
	// MONGO_PUBLIC_URL wins over MONGO_URL
	if v, ok := lookup("MONGO_URL"); ok && v != "" {
		c.Mongo.URI = v
	}
	if v, ok := lookup("MONGO_PUBLIC_URL"); ok && v != "" {
		c.Mongo.URI = v
	}
	if v, ok := lookup("MONGO_DATABASE"); ok && v != "" {
		c.Mongo.Database = v
	}
	if v, ok := lookup("STORAGE_DRIVER"); ok && v != "" {
		c.Storage.Driver = v
	}
	if v, ok := lookup("UPLOAD_DIR"); ok && v != "" {
		c.Uploads.Dir = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.HTTP.AllowOrigins = origins
	}
	if v, ok := lookup("CLEAR_CART_ON_ORDER"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CLEAR_CART_ON_ORDER: %w", err)
		}
		c.Cart.ClearOnOrder = b
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("mongo uri and database are required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	for _, o := range c.HTTP.AllowOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("bad CORS origin %q", o)
		}
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http maxUploadBytes must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Uploads.Dir == "" {
		return errors.New("uploads dir is required")
	}
	return nil
}
