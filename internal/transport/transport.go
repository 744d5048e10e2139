package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skybi/posctl/internal/function"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// HeaderRequestID is the header carrying the client-generated request ID
const HeaderRequestID = "X-Request-ID"

// Middleware wraps an http.RoundTripper
type Middleware = func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to the http.RoundTripper interface
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements the http.RoundTripper interface
func (fn RoundTripperFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return fn(request)
}

// Options configures the HTTP client built by NewClient
type Options struct {
	// Base is the innermost round tripper; http.DefaultTransport if nil
	Base http.RoundTripper

	// Tokens provides the bearer token attached to every request
	Tokens oauth2.TokenSource

	// RateLimit caps the requests per second; 0 disables the limit
	RateLimit float64
}

// NewClient builds the HTTP client every backend request goes through.
// No timeout is configured and nothing is retried.
func NewClient(options Options) *http.Client {
	base := options.Base
	if base == nil {
		base = http.DefaultTransport
	}

	middlewares := []Middleware{
		RequestID(),
		Logging(),
		JSONHeaders(),
	}
	if options.Tokens != nil {
		middlewares = append(middlewares, Bearer(options.Tokens))
	}
	if options.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(rate.NewLimiter(rate.Limit(options.RateLimit), 1)))
	}

	return &http.Client{
		Transport: function.Nest[http.RoundTripper](base, middlewares...),
	}
}

// Bearer attaches 'Authorization: Bearer <token>' whenever the token source provides an access token
func Bearer(source oauth2.TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(request *http.Request) (*http.Response, error) {
			token, err := source.Token()
			if err != nil {
				return nil, fmt.Errorf("could not retrieve the access token: %w", err)
			}
			if token != nil && token.AccessToken != "" {
				request = request.Clone(request.Context())
				token.SetAuthHeader(request)
			}
			return next.RoundTrip(request)
		})
	}
}

// JSONHeaders declares JSON as the request and accepted response content type
func JSONHeaders() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(request *http.Request) (*http.Response, error) {
			request = request.Clone(request.Context())
			if request.Header.Get("Content-Type") == "" {
				request.Header.Set("Content-Type", "application/json")
			}
			if request.Header.Get("Accept") == "" {
				request.Header.Set("Accept", "application/json")
			}
			return next.RoundTrip(request)
		})
	}
}

// RequestID tags every request with a random request ID unless one is already present
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(request *http.Request) (*http.Response, error) {
			if request.Header.Get(HeaderRequestID) == "" {
				request = request.Clone(request.Context())
				request.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next.RoundTrip(request)
		})
	}
}

// RateLimit delays requests so they do not exceed the limiter's rate
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(request *http.Request) (*http.Response, error) {
			if err := limiter.Wait(request.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(request)
		})
	}
}

// Logging logs every request on debug level
func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(request *http.Request) (*http.Response, error) {
			start := time.Now()
			response, err := next.RoundTrip(request)

			event := log.Debug().
				Str("method", request.Method).
				Str("url", request.URL.Redacted()).
				Str("request_id", request.Header.Get(HeaderRequestID)).
				Dur("duration", time.Since(start))
			if err != nil {
				event.Err(err).Msg("backend request failed")
				return nil, err
			}
			event.Int("status", response.StatusCode).Msg("backend request")
			return response, nil
		})
	}
}
