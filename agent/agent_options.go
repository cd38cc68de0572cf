package agent

import "github.com/taipm/agentic/agent/ratelimit"

// Option configures an Agent at construction time, following the
// functional-options pattern the teacher codebase uses for its builders.
type Option func(*Agent)

// WithAPIKey sets the explicit API key, taking precedence over the
// Environment and OS environment variable per the configuration precedence
// order.
func WithAPIKey(key string) Option {
	return func(a *Agent) { a.apiKey = key }
}

// WithBaseURL overrides the provider's default base URL — required for
// OpenAI-compatible proxies (OpenRouter, Together, Ollama, ...).
func WithBaseURL(url string) Option {
	return func(a *Agent) { a.baseURL = url }
}

// WithTools registers the tools available to every Send*/SendStream call
// made through this Agent, unless overridden per call via WithCallTools.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithLogger supplies a Logger; the default is NoopLogger.
func WithLogger(l Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithMaxIterations overrides DefaultMaxIterations for this Agent's
// orchestrator loop.
func WithMaxIterations(n int) Option {
	return func(a *Agent) { a.maxIterations = n }
}

// WithToolExecutor overrides the default sequential ToolExecutor, e.g. with
// a ParallelToolExecutor.
func WithToolExecutor(e ToolExecutor) Option {
	return func(a *Agent) { a.executor = e }
}

// WithRateLimiter attaches a client-side throttle consulted once at the
// start of each Send, SendStream, and SendFor call; the further streams a
// tool-calling loop opens within that call are not throttled. The default
// is ratelimit.NoLimit().
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(a *Agent) { a.limiter = l }
}

// WithEnvironment overrides the Environment used for API-key resolution.
// The default is a fresh, empty Environment (OS environment variables
// still apply as the final precedence step).
func WithEnvironment(e *Environment) Option {
	return func(a *Agent) { a.env = e }
}

// WithRegistry overrides the Registry used to resolve providers. The
// default is the process-wide agent.Providers registry.
func WithRegistry(r *Registry) Option {
	return func(a *Agent) { a.registry = r }
}

// SendOption configures a single Send/SendStream/SendFor call.
type SendOption func(*sendConfig)

type sendConfig struct {
	history []Message
	tools   ToolSet
}

// WithHistory supplies prior conversation turns to prepend before the new
// prompt. The caller owns history; the Agent does not retain it between
// calls.
func WithHistory(history ...Message) SendOption {
	return func(c *sendConfig) { c.history = history }
}

// WithCallTools overrides the Agent's configured tool set for this call only.
func WithCallTools(tools ...Tool) SendOption {
	return func(c *sendConfig) { c.tools = tools }
}

func resolveSendConfig(agentTools ToolSet, opts []SendOption) sendConfig {
	cfg := sendConfig{tools: agentTools}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
