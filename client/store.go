package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Store is a per-resource request orchestrator. It tracks fetched
// collections by endpoint, per-endpoint loading flags, the last failure in
// normalized form, and the descriptor of the failed request so callers can
// replay it with Retry. Previously fetched data always survives a failed
// refresh.
type Store[T any] struct {
	client *Client
	logger *slog.Logger

	mu         sync.Mutex
	data       map[string][]T
	loading    map[string]bool
	lastErr    *Error
	last       *RequestDescriptor
	retryCount int
	cancels    map[string]context.CancelFunc
}

// NewStore creates a store bound to the given client.
func NewStore[T any](c *Client) *Store[T] {
	return &Store[T]{
		client:  c,
		logger:  c.logger,
		data:    make(map[string][]T),
		loading: make(map[string]bool),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Fetch lists the collection at endpoint, transparently flattening
// pagination, and stores the result under that endpoint. On failure the
// endpoint's previous data is kept, the failure is recorded, and the
// request becomes eligible for Retry.
func (s *Store[T]) Fetch(ctx context.Context, endpoint string) ([]T, error) {
	return s.FetchWith(ctx, RequestDescriptor{Method: http.MethodGet, Path: endpoint})
}

// FetchWith is Fetch with a full descriptor, for list requests that need
// query parameters, headers, or a response transform.
func (s *Store[T]) FetchWith(ctx context.Context, d RequestDescriptor) ([]T, error) {
	return s.fetch(ctx, d, true)
}

// Send issues an arbitrary request through the store, typically a
// mutation. The response body is decoded into out when out is non-nil.
// Failures are recorded the same way Fetch records them.
func (s *Store[T]) Send(ctx context.Context, d RequestDescriptor, out any) error {
	d = d.clone()
	endpoint := d.Path

	s.resetRetry()
	ctx, cancel := s.begin(ctx, endpoint)
	defer s.finish(endpoint, cancel)

	body, err := s.client.Do(ctx, d)
	if err != nil {
		return s.recordFailure(d, err)
	}

	s.recordSuccess()
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{Message: "decode response: " + err.Error()}
		}
	}
	return nil
}

// Retry replays the last failed request after an exponential delay:
// the n-th replay waits base << n (1s, 2s, 4s with the default base).
// After three replays further calls do nothing and report exhaustion.
func (s *Store[T]) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.last == nil {
		s.mu.Unlock()
		return ErrNothingToRetry
	}
	if s.retryCount >= maxRetries {
		s.mu.Unlock()
		return ErrRetryExhausted
	}
	d := s.last.clone()
	delay := s.client.backoffBase << s.retryCount
	s.retryCount++
	attempt := s.retryCount
	s.mu.Unlock()

	s.logger.Debug("retrying request",
		slog.String("endpoint", d.Path),
		slog.Int("attempt", attempt),
		slog.Duration("delay", delay),
	)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if d.Method == "" || d.Method == http.MethodGet {
		_, err := s.fetch(ctx, d, false)
		return err
	}
	return s.send(ctx, d)
}

// send replays a mutation descriptor without re-cloning it.
func (s *Store[T]) send(ctx context.Context, d RequestDescriptor) error {
	endpoint := d.Path
	ctx, cancel := s.begin(ctx, endpoint)
	defer s.finish(endpoint, cancel)

	if _, err := s.client.Do(ctx, d); err != nil {
		return s.recordFailure(d, err)
	}
	s.recordSuccess()
	return nil
}

// fetch runs a list request. fresh marks a new caller-issued request, as
// opposed to a Retry replay: fresh requests take a private copy of the
// descriptor and start over with a clean retry count.
func (s *Store[T]) fetch(ctx context.Context, d RequestDescriptor, fresh bool) ([]T, error) {
	if fresh {
		d = d.clone()
		s.resetRetry()
	}
	endpoint := d.Path

	ctx, cancel := s.begin(ctx, endpoint)
	defer s.finish(endpoint, cancel)

	body, err := s.client.FetchAll(ctx, d)
	if err != nil {
		return nil, s.recordFailure(d, err)
	}
	if d.Transform != nil {
		body, err = d.Transform(body)
		if err != nil {
			return nil, s.recordFailure(d, &Error{Message: "transform response: " + err.Error()})
		}
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		// Single-object endpoints come back as one element.
		var one T
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, s.recordFailure(d, &Error{Message: "decode response: " + err.Error()})
		}
		items = []T{one}
	}

	s.mu.Lock()
	s.data[endpoint] = items
	s.lastErr = nil
	s.last = nil
	s.retryCount = 0
	s.mu.Unlock()
	return items, nil
}

// Cancel aborts any in-flight request for the endpoint and clears its
// loading flag. Cancellation is not a failure: no error is recorded and
// the retry state is untouched.
func (s *Store[T]) Cancel(endpoint string) {
	s.mu.Lock()
	cancel := s.cancels[endpoint]
	delete(s.cancels, endpoint)
	s.loading[endpoint] = false
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Data returns the last successfully fetched collection for the endpoint.
func (s *Store[T]) Data(endpoint string) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.data[endpoint]
	return items, ok
}

// Loading reports whether a request for the endpoint is in flight.
func (s *Store[T]) Loading(endpoint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[endpoint]
}

// Err returns the last recorded failure, or nil.
func (s *Store[T]) Err() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// RetryCount returns how many replays the current failure has consumed.
func (s *Store[T]) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}

// begin marks the endpoint as in flight. Entering the requesting state
// clears the recorded error; Err reports nothing while a request runs.
func (s *Store[T]) begin(ctx context.Context, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.loading[endpoint] = true
	s.cancels[endpoint] = cancel
	s.lastErr = nil
	s.mu.Unlock()
	return ctx, cancel
}

// resetRetry discards the retry state carried over from an earlier
// failure. Called on every fresh request; Retry replays keep the count.
func (s *Store[T]) resetRetry() {
	s.mu.Lock()
	s.last = nil
	s.retryCount = 0
	s.mu.Unlock()
}

func (s *Store[T]) finish(endpoint string, cancel context.CancelFunc) {
	s.mu.Lock()
	s.loading[endpoint] = false
	delete(s.cancels, endpoint)
	s.mu.Unlock()
	cancel()
}

// recordFailure normalizes and stores the failure unless it was a
// cancellation. It returns the error the caller should see.
func (s *Store[T]) recordFailure(d RequestDescriptor, err error) error {
	if isCancellation(err) {
		return err
	}
	ce, ok := err.(*Error)
	if !ok {
		ce = &Error{Message: err.Error()}
	}

	s.mu.Lock()
	s.lastErr = ce
	s.last = &d
	s.mu.Unlock()
	return ce
}

func (s *Store[T]) recordSuccess() {
	s.mu.Lock()
	s.lastErr = nil
	s.last = nil
	s.retryCount = 0
	s.mu.Unlock()
}
