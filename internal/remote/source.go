package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the remote rate service settings
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	TaxAuthorityURL string        `mapstructure:"tax_authority_url"`
	SalesTaxURL     string        `mapstructure:"sales_tax_url"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	Deadline        time.Duration `mapstructure:"deadline"`
}

// Validate checks that an enabled config names its endpoints
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.TaxAuthorityURL == "" {
		return errors.New("remote.tax_authority_url is required when remote is enabled")
	}
	if c.SalesTaxURL == "" {
		return errors.New("remote.sales_tax_url is required when remote is enabled")
	}
	if c.Deadline < 0 || c.Timeout < 0 || c.MaxRetries < 0 {
		return errors.New("remote timeouts and retries cannot be negative")
	}
	return nil
}

// Request bodies carry amounts as JSON numbers. decimal.Decimal marshals to a
// quoted string by default, so amounts go through json.Number.
type federalPayload struct {
	Income       json.Number         `json:"income"`
	Deductions   json.Number         `json:"deductions"`
	FilingStatus domain.FilingStatus `json:"filingStatus"`
	TaxYear      int                 `json:"taxYear"`
}

type statePayload struct {
	Income       json.Number         `json:"income"`
	State        string              `json:"state"`
	FilingStatus domain.FilingStatus `json:"filingStatus"`
	TaxYear      int                 `json:"taxYear"`
}

type salesPayload struct {
	Amount  json.Number `json:"amount"`
	State   string      `json:"state"`
	TaxYear int         `json:"taxYear"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// taxResponse is the remote service's reply for any component
type taxResponse struct {
	Status          string           `json:"status"`
	Tax             *decimal.Decimal `json:"tax"`
	Rate            *decimal.Decimal `json:"rate,omitempty"`
	DefaultRateUsed bool             `json:"defaultRateUsed,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// RateSource calls the external tax authority and sales tax services. Every
// failure is returned as a *domain.SourceError.
type RateSource struct {
	client          *HTTPClient
	taxAuthorityURL string
	salesTaxURL     string
	deadline        time.Duration
	logger          *zap.Logger
}

var _ domain.RateSource = (*RateSource)(nil)

// NewRateSource builds a remote source from config
func NewRateSource(cfg Config, logger *zap.Logger, options ...ClientOption) *RateSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	clientOptions := []ClientOption{
		WithTimeout(cfg.Timeout),
		WithRetryConfig(retry),
		WithBearerToken(cfg.APIKey),
		WithLogger(logger),
	}
	return &RateSource{
		client:          NewHTTPClient(append(clientOptions, options...)...),
		taxAuthorityURL: strings.TrimSuffix(cfg.TaxAuthorityURL, "/"),
		salesTaxURL:     cfg.SalesTaxURL,
		deadline:        cfg.Deadline,
		logger:          logger,
	}
}

func (s *RateSource) FederalTax(ctx context.Context, req domain.FederalRequest) (domain.RateOutcome, error) {
	return s.call(ctx, domain.ComponentFederal, s.taxAuthorityURL+"/federal", federalPayload{
		Income:       number(req.Income),
		Deductions:   number(req.Deductions),
		FilingStatus: req.FilingStatus,
		TaxYear:      req.TaxYear,
	})
}

func (s *RateSource) StateTax(ctx context.Context, req domain.StateRequest) (domain.RateOutcome, error) {
	return s.call(ctx, domain.ComponentState, s.taxAuthorityURL+"/state", statePayload{
		Income:       number(req.Income),
		State:        req.State,
		FilingStatus: req.FilingStatus,
		TaxYear:      req.TaxYear,
	})
}

func (s *RateSource) SalesTax(ctx context.Context, req domain.SalesRequest) (domain.RateOutcome, error) {
	return s.call(ctx, domain.ComponentSales, s.salesTaxURL, salesPayload{
		Amount:  number(req.Amount),
		State:   req.State,
		TaxYear: req.TaxYear,
	})
}

func (s *RateSource) call(ctx context.Context, op, endpoint string, body interface{}) (domain.RateOutcome, error) {
	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	data, err := s.client.Post(ctx, endpoint, body)
	if err != nil {
		return domain.RateOutcome{}, classify(op, err)
	}

	var resp taxResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.RateOutcome{}, &domain.SourceError{Op: op, Kind: domain.SourceErrorMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	status := strings.ToLower(resp.Status)
	if status != "ok" && status != "success" {
		msg := resp.Message
		if msg == "" {
			msg = "no message"
		}
		return domain.RateOutcome{}, &domain.SourceError{Op: op, Kind: domain.SourceErrorMalformed, Err: fmt.Errorf("service reported status %q: %s", resp.Status, msg)}
	}
	if resp.Tax == nil {
		return domain.RateOutcome{}, &domain.SourceError{Op: op, Kind: domain.SourceErrorMalformed, Err: errors.New("response has no tax amount")}
	}
	if resp.Tax.IsNegative() {
		return domain.RateOutcome{}, &domain.SourceError{Op: op, Kind: domain.SourceErrorMalformed, Err: fmt.Errorf("negative tax amount %s", resp.Tax)}
	}

	out := domain.RateOutcome{
		Amount:          *resp.Tax,
		Source:          domain.SourceRemote,
		DefaultRateUsed: resp.DefaultRateUsed,
	}
	if resp.Rate != nil {
		out.Rate = *resp.Rate
	}
	s.logger.Debug("remote tax computed", zap.String("component", op), zap.String("tax", out.Amount.String()))
	return out, nil
}

// classify maps a client failure onto a SourceError kind
func classify(op string, err error) *domain.SourceError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return &domain.SourceError{Op: op, Kind: domain.SourceErrorStatus, StatusCode: httpErr.StatusCode, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.SourceError{Op: op, Kind: domain.SourceErrorTimeout, Err: err}
	}
	return &domain.SourceError{Op: op, Kind: domain.SourceErrorTransport, Err: err}
}
