package agent

import "net/http"

// HTTPDoer is the one-method transport interface *http.Client satisfies
// directly, for implementations that add retry/backoff, proxying, or request
// signing. No provider, ModelConfig field, or Agent option in this module
// accepts an HTTPDoer; the provider packages build their SDK clients with
// the SDKs' own default transports.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
