// Package config loads the YAML configuration shared by the viewkit CLI and
// host applications, and maps it onto view and async options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VIEWKIT_"

// DefaultAddr is the serve address used when none is configured.
const DefaultAddr = ":8080"

// Config mirrors the configuration file.
type Config struct {
	Views         StringList  `yaml:"views"`
	Defaults      ViewOptions `yaml:"view_options"`
	DefaultLayout string      `yaml:"default_layout"`
	Cache         bool        `yaml:"cache"`
	Partials      StringList  `yaml:"partials"`
	Extensions    StringList  `yaml:"extensions"`
	Async         Async       `yaml:"async"`
	Server        Server      `yaml:"server"`
}

// ViewOptions holds the inherited layout default.
type ViewOptions struct {
	Layout Layout `yaml:"layout"`
}

// Async configures the per-render async registries.
type Async struct {
	Timeout     time.Duration `yaml:"timeout"`
	OnError     string        `yaml:"on_error"`
	Sanitize    string        `yaml:"sanitize"`
	Concurrency int           `yaml:"concurrency"`
}

// Server configures `viewkit serve`.
type Server struct {
	Addr string `yaml:"addr"`
}

// StringList accepts either a scalar or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		*l = splitList(value)
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*l = compact(values)
		return nil
	default:
		return fmt.Errorf("config: line %d: expected string or list", node.Line)
	}
}

// Layout is the YAML form of view.Layout: a name, or false to disable.
type Layout struct {
	view.Layout
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Layout) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: line %d: layout must be a name or false", node.Line)
	}
	if node.ShortTag() == "!!bool" {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		if enabled {
			return fmt.Errorf("config: line %d: layout true is ambiguous, name the layout", node.Line)
		}
		l.Layout = view.NoLayout()
		return nil
	}
	if node.ShortTag() == "!!null" {
		l.Layout = view.Layout{}
		return nil
	}
	l.Layout = view.LayoutName(node.Value)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Views:  StringList{"views"},
		Server: Server{Addr: DefaultAddr},
	}
}

// Load reads and parses path on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data on top of Default. source names the data in errors.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate reports values no option can represent.
func (c Config) Validate() error {
	var errs []error
	if len(c.Views) == 0 {
		errs = append(errs, errors.New("at least one view root required"))
	}
	if c.Async.Timeout < 0 {
		errs = append(errs, errors.New("async.timeout must not be negative"))
	}
	if _, err := async.ParseFailurePolicy(c.Async.OnError); err != nil {
		errs = append(errs, err)
	}
	if _, err := sanitizer(c.Async.Sanitize); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ApplyEnv overlays VIEWKIT_* variables found through lookup, typically
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		value, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
	}

	if value, ok := env("VIEWS"); ok {
		c.Views = splitList(value)
	}
	if value, ok := env("LAYOUT"); ok {
		if disabled, err := strconv.ParseBool(value); err == nil && !disabled {
			c.Defaults.Layout = Layout{view.NoLayout()}
		} else {
			c.Defaults.Layout = Layout{view.LayoutName(value)}
		}
	}
	if value, ok := env("DEFAULT_LAYOUT"); ok {
		c.DefaultLayout = value
	}
	if value, ok := env("CACHE"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %sCACHE: %w", EnvPrefix, err)
		}
		c.Cache = enabled
	}
	if value, ok := env("PARTIALS"); ok {
		c.Partials = splitList(value)
	}
	if value, ok := env("ASYNC_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %sASYNC_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Async.Timeout = timeout
	}
	if value, ok := env("ASYNC_ON_ERROR"); ok {
		c.Async.OnError = value
	}
	if value, ok := env("ASYNC_SANITIZE"); ok {
		c.Async.Sanitize = value
	}
	if value, ok := env("ADDR"); ok {
		c.Server.Addr = value
	}
	return c.Validate()
}

// ViewOptions returns the inherited view options.
func (c Config) ViewOptions() view.ViewOptions {
	return view.ViewOptions{Layout: c.Defaults.Layout.Layout}
}

// Settings returns the host settings consulted on every render.
func (c Config) Settings() view.Settings {
	return view.Settings{
		Views:       append([]string(nil), c.Views...),
		ViewOptions: c.ViewOptions(),
	}
}

// AsyncOptions maps the async section onto registry options.
func (c Config) AsyncOptions() ([]async.Option, error) {
	policy, err := async.ParseFailurePolicy(c.Async.OnError)
	if err != nil {
		return nil, err
	}
	opts := []async.Option{async.WithFailurePolicy(policy)}
	if c.Async.Timeout > 0 {
		opts = append(opts, async.WithTimeout(c.Async.Timeout))
	}
	if c.Async.Concurrency > 0 {
		opts = append(opts, async.WithConcurrency(c.Async.Concurrency))
	}
	policyFilter, err := sanitizer(c.Async.Sanitize)
	if err != nil {
		return nil, err
	}
	if policyFilter != nil {
		opts = append(opts, async.WithSanitizer(policyFilter))
	}
	return opts, nil
}

// Options maps the file onto view.New options.
func (c Config) Options() ([]view.Option, error) {
	asyncOpts, err := c.AsyncOptions()
	if err != nil {
		return nil, err
	}
	opts := []view.Option{view.WithAsyncOptions(asyncOpts...)}
	if c.DefaultLayout != "" {
		opts = append(opts, view.WithDefaultLayout(c.DefaultLayout))
	}
	if len(c.Extensions) > 0 {
		opts = append(opts, view.WithPartialExtensions(c.Extensions...))
	}
	return opts, nil
}

// RenderOptions builds per-call options carrying the configured settings and
// cache flag.
func (c Config) RenderOptions(locals map[string]any) view.RenderOptions {
	return view.RenderOptions{
		Settings: c.Settings(),
		Cache:    c.Cache,
		Locals:   locals,
	}
}

func sanitizer(name string) (*bluemonday.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "strict":
		return bluemonday.StrictPolicy(), nil
	case "ugc":
		return bluemonday.UGCPolicy(), nil
	default:
		return nil, fmt.Errorf("async: unknown sanitize policy %q", name)
	}
}

func splitList(value string) []string {
	return compact(strings.Split(value, ","))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
