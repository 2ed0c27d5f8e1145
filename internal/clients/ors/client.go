package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/httpx"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// Route is a driving distance/duration estimate between two points.
type Route struct {
	DistanceKm float64
	EtaMinutes int
}

// Client resolves coordinates into road distance and duration.
type Client interface {
	DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (Route, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("ORS_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENROUTESERVICE_API_KEY"))
	}
	baseURL := strings.TrimSpace(os.Getenv("ORS_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	return &client{
		log:        log.With("service", "ORSClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 2,
	}, nil
}

type orsHTTPError struct {
	StatusCode int
	Body       string
}

func (e *orsHTTPError) Error() string {
	return fmt.Sprintf("ors http %d: %s", e.StatusCode, e.Body)
}

func (e *orsHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
	} `json:"routes"`
}

func (c *client) DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (Route, error) {
	if c.apiKey == "" {
		return Route{}, errors.ErrNotConfigured
	}

	// ORS takes lng,lat pairs.
	body := directionsRequest{Coordinates: [][2]float64{{fromLng, fromLat}, {toLng, toLat}}}

	var out directionsResponse
	if err := c.do(ctxutil.Default(ctx), "/v2/directions/driving-car", body, &out); err != nil {
		return Route{}, err
	}
	if len(out.Routes) == 0 {
		return Route{}, fmt.Errorf("no route returned")
	}
	sum := out.Routes[0].Summary
	return Route{
		DistanceKm: math.Round(sum.Distance/1000*10) / 10,
		EtaMinutes: int(math.Round(sum.Duration / 60)),
	}, nil
}

func (c *client) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &orsHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("ors decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("ORS request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
