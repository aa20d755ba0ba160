package client

import (
	"net/url"
	"strings"
	"sync"

	"qcloud/internal/domain"
)

// Endpoints are the four operation URLs derived from one API base.
type Endpoints struct {
	Compute      string
	Inquire      string
	BatchCompute string
	BatchInquire string
}

// DeriveEndpoints validates base and appends the fixed operation paths.
func DeriveEndpoints(base string) (Endpoints, error) {
	const op = "client.DeriveEndpoints"
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return Endpoints{}, domain.E(domain.CodeConfiguration, op, "api base is required", domain.ErrInvalidEndpoint)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Endpoints{}, domain.E(domain.CodeConfiguration, op, err.Error(), domain.ErrInvalidEndpoint)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Endpoints{}, domain.E(domain.CodeConfiguration, op, "api base must use http or https", domain.ErrInvalidEndpoint).
			WithMeta("base", trimmed)
	}
	if parsed.Host == "" {
		return Endpoints{}, domain.E(domain.CodeConfiguration, op, "api base has no host", domain.ErrInvalidEndpoint).
			WithMeta("base", trimmed)
	}
	return Endpoints{
		Compute:      trimmed + domain.ComputePath,
		Inquire:      trimmed + domain.InquirePath,
		BatchCompute: trimmed + domain.BatchComputePath,
		BatchInquire: trimmed + domain.BatchInquirePath,
	}, nil
}

// Session holds connection configuration only: the api token, the
// endpoints, the noise configuration and the verbose flag. Results are
// never stored here; every call returns its own.
type Session struct {
	mu        sync.RWMutex
	token     string
	endpoints Endpoints
	noise     domain.NoiseConfig
	verbose   bool
}

// sessionState is the read-only view a single submit/poll cycle works on.
type sessionState struct {
	token     string
	endpoints Endpoints
	noise     domain.NoiseConfig
	verbose   bool
}

func NewSession(base, token string) (*Session, error) {
	endpoints, err := DeriveEndpoints(base)
	if err != nil {
		return nil, err
	}
	return &Session{token: strings.TrimSpace(token), endpoints: endpoints}, nil
}

// SetNoiseModel validates model and its parameters before storing them.
// The previous configuration is kept when validation fails.
func (s *Session) SetNoiseModel(model domain.NoiseModel, single, double []float64) error {
	cfg, err := domain.NewNoiseConfig(model, single, double)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.noise = cfg
	s.mu.Unlock()
	return nil
}

// SetNoise stores an already validated configuration.
func (s *Session) SetNoise(cfg domain.NoiseConfig) error {
	if cfg.Configured() && !cfg.Model.Valid() {
		return domain.E(domain.CodeConfiguration, "client.Session.SetNoise", "", domain.ErrUnknownNoiseModel).
			WithMeta("model", string(cfg.Model))
	}
	s.mu.Lock()
	s.noise = cfg
	s.mu.Unlock()
	return nil
}

func (s *Session) Noise() domain.NoiseConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noise
}

func (s *Session) SetVerbose(verbose bool) {
	s.mu.Lock()
	s.verbose = verbose
	s.mu.Unlock()
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

func (s *Session) Endpoints() Endpoints {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoints
}

func (s *Session) state() sessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionState{
		token:     s.token,
		endpoints: s.endpoints,
		noise:     s.noise,
		verbose:   s.verbose,
	}
}
