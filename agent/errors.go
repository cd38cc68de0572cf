package agent

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a problem with how the caller set up an Agent,
// Provider, or Tool — a missing API key, a malformed model string, a tool
// with no handler. These are always the caller's to fix before retrying.
type ConfigurationError struct {
	Message string
	Fix     string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Fix == "" {
		return fmt.Sprintf("agent: configuration error: %s", e.Message)
	}
	return fmt.Sprintf("agent: configuration error: %s\nFix: %s", e.Message, e.Fix)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderProtocolError reports that a provider's response could not be
// understood — an unexpected wire shape, a tool call the mapper could not
// decode, a response that violates the provider's own documented contract.
type ProviderProtocolError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderProtocolError) Error() string {
	return fmt.Sprintf("agent: %s: protocol error: %s", e.Provider, e.Message)
}

func (e *ProviderProtocolError) Unwrap() error { return e.Err }

// NetworkError wraps a transport-level failure (timeout, connection reset,
// DNS failure) reaching a provider's endpoint.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("agent: %s: network error: %v\nFix: check connectivity and the provider's base URL, then retry", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IterationCapExceeded reports that the streaming orchestrator reached its
// configured iteration cap without the model producing a final answer. The
// request terminates with FinishReasonError rather than looping forever.
type IterationCapExceeded struct {
	Cap int
}

func (e *IterationCapExceeded) Error() string {
	return fmt.Sprintf("agent: iteration cap of %d exceeded without a final response\nFix: raise agent.WithMaxIterations, or check whether a tool is looping", e.Cap)
}

// CancellationError wraps context.Canceled/context.DeadlineExceeded as they
// surface from a provider stream, distinguishing caller-initiated
// cancellation from a genuine network or protocol failure.
type CancellationError struct {
	Err error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("agent: request cancelled: %v", e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

// ErrToolNotFound names the condition of the model calling a tool name
// absent from the request's ToolSet. The tool executor does not return it:
// a call to an unknown tool yields a ToolResultPart whose Error reads
// `tool "<name>" not found`, and no Go error reaches callers of
// Agent.Send/SendStream.
var ErrToolNotFound = errors.New("tool not found")

// ErrNoMatchingCall names the condition of a tool result that cannot be
// paired with any outstanding call. toolid.Coordinator does not return this
// value; its MatchResult failures are detected with toolid.IsNoMatch.
var ErrNoMatchingCall = errors.New("no matching tool call for this result")

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsProviderProtocolError reports whether err is (or wraps) a ProviderProtocolError.
func IsProviderProtocolError(err error) bool {
	var pe *ProviderProtocolError
	return errors.As(err, &pe)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// WrapNetworkError wraps err as a NetworkError attributed to provider.
func WrapNetworkError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Provider: provider, Err: err}
}

// WrapProtocolError wraps err as a ProviderProtocolError attributed to provider.
func WrapProtocolError(provider, message string, err error) error {
	return &ProviderProtocolError{Provider: provider, Message: message, Err: err}
}
