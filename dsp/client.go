package dsp

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/ctvbid/ctvbid/logger"
	"github.com/ctvbid/ctvbid/metrics"
	"github.com/prebid/openrtb/v20/openrtb2"
	"golang.org/x/net/context/ctxhttp"
)

const (
	headerOpenRTBVersion = "X-Openrtb-Version"
	headerForwardedFor   = "X-Forwarded-For"
	contentTypeJSON      = "application/json"
)

// Sender posts a bid request to a single DSP endpoint.
type Sender interface {
	Send(ctx context.Context, endpoint string, req *openrtb2.BidRequest) (*openrtb2.BidResponse, error)
}

// Client sends OpenRTB bid requests to one DSP endpoint at a time, retrying failed attempts
// with exponential backoff.
type Client struct {
	httpClient *http.Client
	cfg        config.DSP
	clock      clock.Clock
	me         metrics.MetricsEngine
	logger     logger.Logger
}

// NewClient builds a Client. The http.Client should be shared across requests so the
// underlying connection pool is reused.
func NewClient(httpClient *http.Client, cfg config.DSP, me metrics.MetricsEngine, log logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		clock:      clock.New(),
		me:         me,
		logger:     log,
	}
}

// Send makes up to 1+MaxRetries attempts. Only an HTTP 200 with a JSON body which decodes into a
// bid response counts as success; the response may still hold no bids. The error of the final
// attempt is returned once the attempts are exhausted. A cancelled ctx ends the loop immediately.
func (c *Client) Send(ctx context.Context, endpoint string, req *openrtb2.BidRequest) (*openrtb2.BidResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &errortypes.FailedToMarshal{Message: err.Error()}
	}
	dsp := Name(endpoint)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.me.RecordDSPRetry(dsp)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		resp, err := c.doRequest(ctx, endpoint, dsp, body, req.Device)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warnf("[%s] DSP %s attempt %d of %d failed: %v", req.ID, endpoint, attempt+1, c.cfg.MaxRetries+1, err)

		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// backoff sleeps base*2^(attempt-1) before the given retry attempt.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.cfg.BackoffBase() << uint(attempt-1)
	if delay <= 0 {
		return contextError(ctx.Err())
	}

	timer := c.clock.Timer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return contextError(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (c *Client) doRequest(ctx context.Context, endpoint, dsp string, body []byte, device *openrtb2.Device) (*openrtb2.BidResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.me.RecordDSPRequest(metrics.DSPLabels{DSP: dsp, Outcome: metrics.DSPOutcomeErr})
		return nil, err
	}
	httpReq.Header = c.headers(device)

	start := c.clock.Now()
	resp, err := c.exchange(attemptCtx, httpReq)
	c.me.RecordDSPTime(dsp, c.clock.Since(start))
	c.me.RecordDSPRequest(metrics.DSPLabels{DSP: dsp, Outcome: outcome(resp, err)})
	return resp, err
}

func (c *Client) exchange(ctx context.Context, httpReq *http.Request) (*openrtb2.BidResponse, error) {
	httpResp, err := ctxhttp.Do(ctx, c.httpClient, httpReq)
	if err != nil {
		return nil, contextError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, contextError(err)
	}
	if int64(len(respBody)) > c.cfg.MaxResponseBytes {
		return nil, &errortypes.BadServerResponse{
			Message:    fmt.Sprintf("Server response exceeded %d bytes.", c.cfg.MaxResponseBytes),
			StatusCode: httpResp.StatusCode,
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &errortypes.BadServerResponse{
			Message:    fmt.Sprintf("Server responded with failure status: %d.", httpResp.StatusCode),
			StatusCode: httpResp.StatusCode,
		}
	}

	var bidResp openrtb2.BidResponse
	if err := json.Unmarshal(respBody, &bidResp); err != nil {
		return nil, &errortypes.FailedToUnmarshal{Message: fmt.Sprintf("bad server response body: %v", err)}
	}
	return &bidResp, nil
}

func (c *Client) headers(device *openrtb2.Device) http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", contentTypeJSON)
	headers.Set("Accept", contentTypeJSON)
	headers.Set(headerOpenRTBVersion, c.cfg.OpenRTBVersion)
	if device != nil {
		if ip := deviceIP(device); ip != "" {
			headers.Set(headerForwardedFor, ip)
		}
		if device.UA != "" {
			headers.Set("User-Agent", device.UA)
		}
	}
	return headers
}

func deviceIP(device *openrtb2.Device) string {
	if device.IP != "" {
		return device.IP
	}
	return device.IPv6
}

// contextError turns an expired deadline into a Timeout so callers can classify it.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &errortypes.Timeout{Message: err.Error()}
	}
	return err
}

func outcome(resp *openrtb2.BidResponse, err error) metrics.DSPOutcome {
	if err == nil {
		if HasBids(resp) {
			return metrics.DSPOutcomeBid
		}
		return metrics.DSPOutcomeNoBid
	}
	switch errortypes.ReadCode(err) {
	case errortypes.TimeoutErrorCode:
		return metrics.DSPOutcomeTimeout
	case errortypes.BadServerResponseErrorCode, errortypes.FailedToUnmarshalErrorCode:
		return metrics.DSPOutcomeBadResponse
	default:
		return metrics.DSPOutcomeErr
	}
}

// Name returns the metrics label of an endpoint: its host, or UnknownDSP when it has none.
func Name(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return metrics.UnknownDSP
	}
	return u.Host
}

// Names maps every endpoint to its metrics label.
func Names(endpoints []string) []string {
	names := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		names = append(names, Name(endpoint))
	}
	return names
}

// NewTransport builds the pooled transport shared by every outbound DSP call.
// A nil pool means the system roots. Host verification is never disabled.
func NewTransport(cfg config.DSP, certPool *x509.CertPool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.IdleConnTimeout = time.Duration(cfg.IdleConnTimeoutSeconds) * time.Second
	transport.TLSClientConfig = &tls.Config{RootCAs: certPool}
	return transport
}
