// Package apifootball is a thin client for the API-FOOTBALL v3 REST API,
// covering the fixtures, odds and bets-catalog endpoints the collector uses.
package apifootball

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"oddsflow/config"
	"oddsflow/logger"
)

// Client wraps a resty HTTP client carrying the API key header, the retry
// policy for throttled and failing upstreams, and an optional client-side
// rate limit.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Entry
}

// New builds a client from the API configuration.
func New(cfg config.APIConfig) *Client {
	log := logger.GetLogger().WithComponent("apifootball")

	httpc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-apisports-key", cfg.Key).
		SetTimeout(cfg.Timeout.Std()).
		SetRetryCount(cfg.MaxRetries - 1).
		SetRetryWaitTime(cfg.RetryWait.Std()).
		SetRetryMaxWaitTime(cfg.RetryWaitMax.Std()).
		SetLogger(restyLogger{entry: log})

	httpc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		switch r.StatusCode() {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	})

	wait := cfg.RetryWait.Std()
	maxWait := cfg.RetryWaitMax.Std()
	httpc.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		delay := backoffDelay(wait, maxWait, attemptOf(resp))
		if ra := retryAfterHeader(resp); ra > delay {
			delay = ra
		}
		if delay > maxWait {
			delay = maxWait
		}
		return delay, nil
	})

	c := &Client{http: httpc, log: log}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
		httpc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return c.limiter.Wait(req.Context())
		})
	}
	return c
}

// backoffDelay doubles the base wait once per completed attempt, capped at
// max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}

func attemptOf(resp *resty.Response) int {
	if resp == nil || resp.Request == nil {
		return 1
	}
	return resp.Request.Attempt
}

// retryAfterHeader reads a seconds-valued Retry-After header. Absent or
// unparsable values yield zero so the computed backoff applies instead.
func retryAfterHeader(resp *resty.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := strings.TrimSpace(resp.Header().Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// restyLogger routes resty's retry and transport messages into the shared
// structured log stream.
type restyLogger struct {
	entry *logger.Entry
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
