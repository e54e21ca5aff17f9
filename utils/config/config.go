// Package config reads tool settings from environment variables
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/deepch/webmio/utils/logger"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Conf is a namespaced view over environment variables, e.g. "WEBM_"
type Conf struct{ prefix string }

// New creates a root Conf without prefix
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(c.key(key)))
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// Settings are the knobs shared by the webmdump commands
type Settings struct {
	ChunkSize     int    `validate:"min=1,max=67108864"`
	Listen        string `validate:"required,hostname_port"`
	IncludeBinary bool
}

const (
	DefaultChunkSize = 64 * 1024
	DefaultListen    = "127.0.0.1:8089"
)

// Load reads WEBM_CHUNK_SIZE, WEBM_LISTEN and WEBM_INCLUDE_BINARY below c
func Load(c Conf) (Settings, error) {
	c = c.Prefix("WEBM_")
	s := Settings{
		ChunkSize:     c.MayInt("CHUNK_SIZE", DefaultChunkSize),
		Listen:        c.MayString("LISTEN", DefaultListen),
		IncludeBinary: c.MayBool("INCLUDE_BINARY", false),
	}
	return s, s.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings after flags were applied
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	return nil
}
