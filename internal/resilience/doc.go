// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes circuit breakers and retry logic used around the Spotify Web API
// and the token endpoint.
//
// The package supports:
//   - Circuit breakers for external API calls (Spotify Web API, token endpoint)
//   - Retry logic with exponential backoff and jitter for transient failures
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.SpotifyAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callSpotify()
//	})
//
//	retryConfig := retry.TokenEndpointConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return refreshToken()
//	})
package resilience
