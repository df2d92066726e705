// Package config implements the configuration for the chat relay server.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"

	"cryptochat-backend/keyexchange"
	"cryptochat-backend/session"
)

const (
	defaultAddress     = ":5000"
	defaultLogLevel    = "NOTICE"
	defaultMetricsPath = "/metrics"
	minRSAKeyBits      = 1024

	// PortEnv overrides the port of Server.Address when set.
	PortEnv = "PORT"
)

var defaultAllowOrigins = []string{"http://localhost:3000"}

// Server is the HTTP listener configuration.
type Server struct {
	// Address is the host:port to listen on.
	Address string

	// AllowOrigins lists the origins accepted by the CORS middleware.
	AllowOrigins []string

	// GinMode is one of debug, release or test.
	GinMode string
}

func (s *Server) fixup() {
	if s.Address == "" {
		s.Address = defaultAddress
	}
	if port := os.Getenv(PortEnv); port != "" {
		host, _, err := net.SplitHostPort(s.Address)
		if err != nil {
			host = ""
		}
		s.Address = net.JoinHostPort(host, port)
	}
	if s.AllowOrigins == nil {
		s.AllowOrigins = defaultAllowOrigins
	}
	if s.GinMode == "" {
		s.GinMode = gin.ReleaseMode
	}
}

func (s *Server) validate() error {
	if _, _, err := net.SplitHostPort(s.Address); err != nil {
		return fmt.Errorf("config: Server: Address '%v' is invalid: %v", s.Address, err)
	}
	switch s.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("config: Server: GinMode '%v' is invalid", s.GinMode)
	}
	return nil
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (l *Logging) validate() error {
	switch strings.ToUpper(l.Level) {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		l.Level = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", l.Level)
	}
	l.Level = strings.ToUpper(l.Level)
	return nil
}

// Session is the handshake and relay configuration.
type Session struct {
	// ReplyPrefix is prepended to every relayed message. A nil value
	// (omitted from the file) means "+".
	ReplyPrefix *string

	// RSAKeyBits is the modulus size of generated RSA keypairs.
	RSAKeyBits int
}

// Prefix returns the configured reply prefix.
func (s *Session) Prefix() string {
	if s.ReplyPrefix == nil {
		return session.DefaultReplyPrefix
	}
	return *s.ReplyPrefix
}

func (s *Session) validate() error {
	if s.RSAKeyBits == 0 {
		s.RSAKeyBits = keyexchange.DefaultRSABits
	}
	if s.RSAKeyBits < minRSAKeyBits {
		return fmt.Errorf("config: Session: RSAKeyBits %d is below %d", s.RSAKeyBits, minRSAKeyBits)
	}
	return nil
}

// Metrics is the prometheus exposition configuration.
type Metrics struct {
	// Enable serves the metrics endpoint.
	Enable bool

	// Path is the URL path of the metrics endpoint.
	Path string
}

func (m *Metrics) validate() error {
	if m.Path == "" {
		m.Path = defaultMetricsPath
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("config: Metrics: Path '%v' must start with '/'", m.Path)
	}
	return nil
}

// Config is the top level server configuration.
type Config struct {
	Server  *Server
	Logging *Logging
	Session *Session
	Metrics *Metrics
}

// Default returns the configuration used when no file is given. It can
// still fail when the PORT environment variable is malformed.
func Default() (*Config, error) {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (c *Config) FixupAndValidate() error {
	// Handle missing sections if possible.
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Logging == nil {
		c.Logging = &Logging{Level: defaultLogLevel}
	}
	if c.Session == nil {
		c.Session = &Session{}
	}
	if c.Metrics == nil {
		c.Metrics = &Metrics{Enable: true}
	}

	c.Server.fixup()
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	return c.Metrics.validate()
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses, and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	if f == "" {
		return nil, errors.New("config: no file given")
	}
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
