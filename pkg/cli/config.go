package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".tio"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config is the tio configuration file: a set of named contexts, one of
// which is current.
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context is a named profile: where objects and records live and how
// streams over them are buffered.
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// Store selects the object store: "local" (default) or "s3".
	Store string `yaml:"store,omitempty"`

	// Root is the local store directory. Relative paths are resolved
	// against the config directory.
	Root string `yaml:"root,omitempty"`

	// S3 configures the s3 store.
	S3 *S3Config `yaml:"s3,omitempty"`

	// KV selects the record store: "badger" (default) or "memory".
	KV string `yaml:"kv,omitempty"`

	// KVDir is the badger directory. Relative paths are resolved against
	// the config directory.
	KVDir string `yaml:"kv_dir,omitempty"`

	// Stream holds the default stream settings.
	Stream StreamConfig `yaml:"stream,omitempty"`

	// Extra stores free-form settings
	Extra map[string]string `yaml:"extra,omitempty"`
}

// S3Config holds the settings of an S3 or S3-compatible object store.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`

	// AccessKey and SecretKey fall back to AWS_ACCESS_KEY_ID and
	// AWS_SECRET_ACCESS_KEY.
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// StreamConfig holds stream defaults.
type StreamConfig struct {
	// Mode is the output buffering mode: none, line or full.
	Mode string `yaml:"mode,omitempty"`

	// BufferSize is the output buffer size in bytes (0 for the default).
	BufferSize int `yaml:"buffer_size,omitempty"`

	// Locale is the character encoding used for text, e.g. "latin1".
	Locale string `yaml:"locale,omitempty"`

	// BoolAlpha prints booleans as true/false instead of 1/0 (default
	// true).
	BoolAlpha *bool `yaml:"bool_alpha,omitempty"`

	// Pushback is the pushback capacity in bytes (0 for the default).
	Pushback int `yaml:"pushback,omitempty"`
}

// LoadConfig loads or creates ~/.tio/config.yaml.
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			ctx = &Context{}
			cfg.Contexts[name] = ctx
		}
		ctx.Name = name
	}
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds a new context, replacing one of the same name.
func (c *Config) AddContext(name string, ctx *Context) error {
	if err := ValidateContextName(name); err != nil {
		return err
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the named context, or the current one if name is
// empty. With neither, it returns an unnamed context with default settings.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		if c.CurrentContext == "" {
			return &Context{}, nil
		}
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateContextName rejects names that cannot be used as YAML keys on
// the command line.
func ValidateContextName(name string) error {
	if name == "" {
		return fmt.Errorf("context name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n/\\:") {
		return fmt.Errorf("context name %q contains invalid characters", name)
	}
	return nil
}

// Set assigns a setting by its dotted key, e.g. "stream.mode" or
// "s3.bucket".
func (ctx *Context) Set(key, value string) error {
	switch key {
	case "store":
		ctx.Store = value
	case "root":
		ctx.Root = value
	case "kv":
		ctx.KV = value
	case "kv_dir":
		ctx.KVDir = value
	case "stream.mode":
		ctx.Stream.Mode = value
	case "stream.buffer_size":
		n, err := parseSize(key, value)
		if err != nil {
			return err
		}
		ctx.Stream.BufferSize = n
	case "stream.pushback":
		n, err := parseSize(key, value)
		if err != nil {
			return err
		}
		ctx.Stream.Pushback = n
	case "stream.locale":
		ctx.Stream.Locale = value
	case "stream.bool_alpha":
		var b bool
		switch value {
		case "true":
			b = true
		case "false":
		default:
			return fmt.Errorf("%s: want true or false, got %q", key, value)
		}
		ctx.Stream.BoolAlpha = &b
	case "s3.bucket", "s3.prefix", "s3.region", "s3.endpoint", "s3.access_key", "s3.secret_key", "s3.path_style":
		if ctx.S3 == nil {
			ctx.S3 = &S3Config{}
		}
		return ctx.S3.set(strings.TrimPrefix(key, "s3."), value)
	default:
		if k, ok := strings.CutPrefix(key, "extra."); ok && k != "" {
			ctx.SetExtra(k, value)
			return nil
		}
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func (s *S3Config) set(key, value string) error {
	switch key {
	case "bucket":
		s.Bucket = value
	case "prefix":
		s.Prefix = value
	case "region":
		s.Region = value
	case "endpoint":
		s.Endpoint = value
	case "access_key":
		s.AccessKey = value
	case "secret_key":
		s.SecretKey = value
	case "path_style":
		s.PathStyle = value == "true"
	}
	return nil
}

// GetExtra returns an extra value for the context
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value for the context
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// MaskSecret masks a secret for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
