package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/medibot/internal/domain/providers"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("completion provider circuit open")

// Settings configure when the breaker trips.
type Settings struct {
	// ConsecutiveFailures trips the breaker; 0 disables it.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

// CompletionProvider stops calling a failing model backend until it recovers.
type CompletionProvider struct {
	next providers.CompletionProvider
	cb   *gobreaker.CircuitBreaker
}

// Wrap returns next unchanged when the breaker is disabled.
func Wrap(name string, next providers.CompletionProvider, s Settings) providers.CompletionProvider {
	if s.ConsecutiveFailures == 0 {
		return next
	}
	return &CompletionProvider{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("completion breaker state changed")
			},
		}),
	}
}

func (p *CompletionProvider) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return p.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the current breaker state.
func (p *CompletionProvider) State() gobreaker.State {
	return p.cb.State()
}

// Check fails while the breaker is open. It is registered as the llm health check.
func (p *CompletionProvider) Check(_ context.Context) error {
	if p.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: %s", ErrOpen, p.cb.Name())
	}
	return nil
}
