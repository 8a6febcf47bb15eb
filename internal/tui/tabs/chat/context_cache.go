package chat

import (
	"context"
	"fmt"
	"sync"
)

// contextSizeCache provides channel-based access to model context window
// sizes, keyed by model@url. A single worker goroutine owns the map, so
// lookups from render-adjacent code and background fetches never race.
type contextSizeCache struct {
	requests chan cacheRequest
	shutdown chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

type cacheRequest struct {
	operation string // "get", "set", "clear"
	key       string
	value     int
	response  chan cacheResponse
}

type cacheResponse struct {
	value int
	found bool
	error error
}

// sizeCache is the process-wide context size cache.
var sizeCache = newContextSizeCache()

func newContextSizeCache() *contextSizeCache {
	cache := &contextSizeCache{
		requests: make(chan cacheRequest, 10),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.worker()

	return cache
}

func (c *contextSizeCache) worker() {
	defer c.wg.Done()
	defer close(c.done)

	sizes := make(map[string]int)

	for {
		select {
		case req := <-c.requests:
			switch req.operation {
			case "get":
				value, found := sizes[req.key]
				req.response <- cacheResponse{value: value, found: found}

			case "set":
				sizes[req.key] = req.value
				req.response <- cacheResponse{value: req.value, found: true}

			case "clear":
				sizes = make(map[string]int)
				req.response <- cacheResponse{found: true}

			default:
				req.response <- cacheResponse{
					error: fmt.Errorf("unknown operation: %s", req.operation),
				}
			}
			close(req.response)

		case <-c.shutdown:
			// Drain any remaining requests
		drainLoop:
			for {
				select {
				case req := <-c.requests:
					req.response <- cacheResponse{
						error: fmt.Errorf("cache shutting down"),
					}
					close(req.response)
				default:
					break drainLoop
				}
			}
			return
		}
	}
}

// Get retrieves a cached context size.
func (c *contextSizeCache) Get(key string) (int, bool) {
	responseChan := make(chan cacheResponse, 1)
	request := cacheRequest{operation: "get", key: key, response: responseChan}

	select {
	case c.requests <- request:
		select {
		case response := <-responseChan:
			return response.value, response.found
		case <-c.shutdown:
			return 0, false
		}
	case <-c.shutdown:
		return 0, false
	}
}

// Set stores a context size.
func (c *contextSizeCache) Set(key string, value int) error {
	responseChan := make(chan cacheResponse, 1)
	request := cacheRequest{operation: "set", key: key, value: value, response: responseChan}

	select {
	case c.requests <- request:
		select {
		case response := <-responseChan:
			return response.error
		case <-c.shutdown:
			return fmt.Errorf("cache shutting down")
		}
	case <-c.shutdown:
		return fmt.Errorf("cache shutting down")
	}
}

// Clear removes all cached sizes.
func (c *contextSizeCache) Clear() error {
	responseChan := make(chan cacheResponse, 1)
	request := cacheRequest{operation: "clear", response: responseChan}

	select {
	case c.requests <- request:
		response := <-responseChan
		return response.error
	case <-c.shutdown:
		return fmt.Errorf("cache shutting down")
	}
}

// Shutdown stops the worker, waiting up to the context deadline.
func (c *contextSizeCache) Shutdown(ctx context.Context) error {
	close(c.shutdown)

	select {
	case <-c.done:
		c.wg.Wait()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
