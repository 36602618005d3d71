package async

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"
)

// Delimiter wraps every token. Template engines and HTML escaping never
// produce it, and it is stripped from resolved values.
const Delimiter = "\x1a"

// ErrDrained is returned when a registry is drained twice.
var ErrDrained = errors.New("async: registry already drained")

// Func computes a helper's value. args are the arguments the template passed
// to the helper.
type Func func(ctx context.Context, args ...any) (string, error)

// FailurePolicy decides what a failing Func does to its render.
type FailurePolicy int

const (
	// FailRender turns the first failure into the render error and cancels
	// the remaining functions' context.
	FailRender FailurePolicy = iota
	// SubstituteEmpty logs the failure and substitutes an empty string.
	SubstituteEmpty
)

func (p FailurePolicy) String() string {
	switch p {
	case SubstituteEmpty:
		return "empty"
	default:
		return "fail"
	}
}

// ParseFailurePolicy maps "fail" and "empty" to a policy.
func ParseFailurePolicy(raw string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "fail", "error":
		return FailRender, nil
	case "empty":
		return SubstituteEmpty, nil
	default:
		return FailRender, fmt.Errorf("async: unknown failure policy %q", raw)
	}
}

// HelperError reports a failed asynchronous helper.
type HelperError struct {
	Helper string
	Token  string
	Err    error
}

func (e *HelperError) Error() string {
	return fmt.Sprintf("async: helper %q: %v", e.Helper, e.Err)
}

func (e *HelperError) Unwrap() error { return e.Err }

// Option configures a Registry.
type Option func(*config)

type config struct {
	timeout   time.Duration
	policy    FailurePolicy
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	limit     int
}

// WithTimeout bounds Drain. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.timeout = d
		}
	}
}

// WithFailurePolicy selects how helper failures propagate.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithSanitizer filters every resolved value through policy. Substituted
// values bypass the engine's escaping, so helpers returning user content
// should be paired with one.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.sanitizer = policy
	}
}

// WithLogger sets the logger used for substituted failures.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithConcurrency caps how many functions run at once during Drain. Zero or
// negative means unbounded.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.limit = n
	}
}

type pending struct {
	name string
	fn   Func
	args []any
}

// Registry holds the pending work of one render call.
type Registry struct {
	cfg    config
	prefix string

	mu      sync.Mutex
	next    uint64
	order   []string
	work    map[string]pending
	drained bool
}

// NewRegistry creates an empty registry with a fresh nonce.
func NewRegistry(opts ...Option) *Registry {
	cfg := config{
		policy: FailRender,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Registry{
		cfg:    cfg,
		prefix: Delimiter + "async:" + uuid.NewString() + ":",
		work:   make(map[string]pending),
	}
}

// Resolve registers fn and returns the token to emit in its place.
func (r *Registry) Resolve(name string, fn Func, args ...any) string {
	if fn == nil {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drained {
		r.cfg.logger.Warn("async helper called after drain", "helper", name)
		return ""
	}
	r.next++
	token := r.prefix + strconv.FormatUint(r.next, 10) + Delimiter
	r.order = append(r.order, token)
	r.work[token] = pending{name: name, fn: fn, args: args}
	return token
}

// Bind returns a synchronous helper that registers fn on every call. This is
// the value handed to the engine for the duration of one render.
func (r *Registry) Bind(name string, fn Func) func(args ...any) string {
	return func(args ...any) string {
		return r.Resolve(name, fn, args...)
	}
}

// Pending reports how many functions are registered.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.work)
}

// Tokens returns the registered tokens in registration order.
func (r *Registry) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Owns reports whether s still contains one of this registry's tokens.
func (r *Registry) Owns(s string) bool {
	return strings.Contains(s, r.prefix)
}

// Drain runs every pending function concurrently and returns their values
// keyed by token. It returns once all of them have returned.
func (r *Registry) Drain(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	if r.drained {
		r.mu.Unlock()
		return nil, ErrDrained
	}
	r.drained = true
	order := r.order
	work := r.work
	r.mu.Unlock()

	values := make(map[string]string, len(order))
	if len(order) == 0 {
		return values, nil
	}

	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if r.cfg.limit > 0 {
		group.SetLimit(r.cfg.limit)
	}

	var mu sync.Mutex
	for _, token := range order {
		item := work[token]
		group.Go(func() error {
			value, err := call(groupCtx, item)
			if err != nil {
				herr := &HelperError{Helper: item.name, Token: token, Err: err}
				if r.cfg.policy != SubstituteEmpty {
					return herr
				}
				r.cfg.logger.Warn("async helper failed, substituting empty value",
					"helper", item.name, "error", err)
				value = ""
			}
			value = r.clean(value)

			mu.Lock()
			values[token] = value
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// Finish drains the registry and substitutes the values into rendered.
func (r *Registry) Finish(ctx context.Context, rendered string) (string, error) {
	values, err := r.Drain(ctx)
	if err != nil {
		return "", err
	}
	out := Substitute(rendered, values)
	if r.Owns(out) {
		r.cfg.logger.Warn("async tokens left unresolved in output")
	}
	return out, nil
}

func (r *Registry) clean(value string) string {
	value = strings.ReplaceAll(value, Delimiter, "")
	if r.cfg.sanitizer != nil {
		value = r.cfg.sanitizer.Sanitize(value)
	}
	return value
}

func call(ctx context.Context, item pending) (value string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return item.fn(ctx, item.args...)
}

// Substitute replaces every token in rendered with its value in a single
// left-to-right pass. Replacement text is never rescanned, so a value that
// happens to contain token text cannot trigger a second substitution.
func Substitute(rendered string, values map[string]string) string {
	if len(values) == 0 || rendered == "" {
		return rendered
	}
	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		pairs = append(pairs, token, value)
	}
	return strings.NewReplacer(pairs...).Replace(rendered)
}
