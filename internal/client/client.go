package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"qcloud/internal/domain"
	"qcloud/internal/infra/encoder"
	"qcloud/internal/infra/request"
	"qcloud/internal/infra/telemetry"
	"qcloud/internal/infra/transport"
)

type ClientOptions struct {
	Transport domain.Transport
	Encoder   domain.ProgramEncoder
	Logger    *zap.Logger
	Metrics   domain.Metrics
	// PollInterval and BatchPollInterval default to 1000 ms and 500 ms.
	PollInterval      time.Duration
	BatchPollInterval time.Duration
	// PollTimeout bounds each wait; zero waits until the context ends.
	PollTimeout time.Duration
	Now         func() time.Time
}

// Client drives the submit, poll and decode lifecycle against one session.
// It is safe for concurrent use; every call works on a snapshot of the
// session taken when the call starts.
type Client struct {
	session           *Session
	transport         domain.Transport
	encoder           domain.ProgramEncoder
	logger            *zap.Logger
	metrics           domain.Metrics
	pollInterval      time.Duration
	batchPollInterval time.Duration
	pollTimeout       time.Duration
	now               func() time.Time
}

func NewClient(session *Session, opts ClientOptions) (*Client, error) {
	if session == nil {
		return nil, domain.Configf("client.NewClient", "session is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := opts.Transport
	if tr == nil {
		tr = transport.NewHTTPTransport(transport.HTTPTransportOptions{Logger: logger})
	}
	enc := opts.Encoder
	if enc == nil {
		enc = encoder.NewIREncoder()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = domain.DefaultPollInterval
	}
	batchPollInterval := opts.BatchPollInterval
	if batchPollInterval <= 0 {
		batchPollInterval = domain.DefaultBatchPollInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		session:           session,
		transport:         tr,
		encoder:           enc,
		logger:            logger.Named("client"),
		metrics:           metrics,
		pollInterval:      pollInterval,
		batchPollInterval: batchPollInterval,
		pollTimeout:       opts.PollTimeout,
		now:               now,
	}, nil
}

func (c *Client) Session() *Session {
	return c.session
}

// post sends body and logs the raw response when the session is verbose.
func (c *Client) post(ctx context.Context, st sessionState, url string, body []byte) ([]byte, error) {
	resp, err := c.transport.Post(ctx, url, body)
	if err != nil {
		return nil, err
	}
	if st.verbose {
		telemetry.LoggerFor(ctx, c.logger).Debug("response received",
			telemetry.EventField(telemetry.EventResponseDump),
			zap.String("url", url),
			telemetry.BodyField(resp),
		)
	}
	return resp, nil
}

// logDecodeFailure records the body that could not be decoded. Only called
// in verbose sessions; the body may carry server diagnostics.
func (c *Client) logDecodeFailure(ctx context.Context, st sessionState, body []byte, err error) {
	if !st.verbose || err == nil {
		return
	}
	if !domain.IsCode(err, domain.CodeResultDecode) && !domain.IsCode(err, domain.CodeRemoteRejection) {
		return
	}
	telemetry.LoggerFor(ctx, c.logger).Debug("response not accepted",
		telemetry.EventField(telemetry.EventResponseDump),
		telemetry.BodyField(body),
		zap.Error(err),
	)
}

func (c *Client) builder(st sessionState) *request.Builder {
	return request.NewBuilder(st.token, st.noise)
}

func (c *Client) encode(ctx context.Context, progs ...domain.Program) ([]string, error) {
	codes, err := c.encoder.Encode(ctx, progs...)
	if err != nil {
		return nil, domain.Wrap(domain.CodeConfiguration, "client.encode", err)
	}
	if len(codes) != len(progs) {
		return nil, domain.Configf("client.encode", "encoder returned %d texts for %d programs", len(codes), len(progs))
	}
	return codes, nil
}
