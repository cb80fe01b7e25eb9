package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/types"
	"github.com/footmetricx/pitchctl/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) (int, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return resp.StatusCode, fmt.Errorf("GET %s: %w", url, err)
	}
	return resp.StatusCode, nil
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

type submitResult int

const (
	submitAccepted submitResult = iota
	submitDuplicate
	submitFailed
)

// submitFrames posts frames concurrently using a worker pool.
func submitFrames(ctx context.Context, config *Config, frames []types.Frame, stats *Stats) error {
	log := logger.Named("replay")
	log.Info(ctx, "submitting frames", logger.Int("frames", len(frames)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/matches/%s/frames", config.BaseURL, config.MatchID)

	var accepted, duplicate, failed, submitted atomic.Int64

	frameChan := make(chan types.Frame, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frame := range frameChan {
				if ctx.Err() != nil {
					continue
				}
				switch submitSingleFrame(ctx, client, url, &frame) {
				case submitAccepted:
					accepted.Add(1)
				case submitDuplicate:
					duplicate.Add(1)
				case submitFailed:
					failed.Add(1)
				}
				if n := submitted.Add(1); config.Verbose && n%100 == 0 {
					log.Debug(ctx, "progress",
						logger.Int64("submitted", n),
						logger.Int64("accepted", accepted.Load()),
						logger.Int64("failed", failed.Load()))
				}
			}
		}()
	}

	go func() {
		defer close(frameChan)
		for _, frame := range frames {
			select {
			case <-ctx.Done():
				return
			case frameChan <- frame:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "frame submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	return nil
}

func submitSingleFrame(ctx context.Context, client *HTTPClient, url string, frame *types.Frame) submitResult {
	resp, err := client.Post(ctx, url, frame)
	if err != nil {
		return submitFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return submitFailed
	}

	var ack types.SubmitAck
	switch resp.StatusCode {
	case http.StatusAccepted:
		return submitAccepted
	case http.StatusOK:
		if err := json.Unmarshal(body, &ack); err == nil && !ack.Duplicate {
			return submitAccepted
		}
		return submitDuplicate
	default:
		return submitFailed
	}
}
