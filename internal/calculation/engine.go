package calculation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/rates"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// TaxEngine orchestrates a full calculation: validate deductions, compute the
// federal, state and sales components, then score and annotate the result.
// Components are computed from the remote source when one is configured and from
// the local rate table otherwise, or when the remote call fails.
type TaxEngine struct {
	Rates  *rates.Store
	Remote domain.RateSource
	Policy Policy
	Logger Logger
}

// NewTaxEngine creates an engine over a rate store. remote may be nil.
func NewTaxEngine(store *rates.Store, remote domain.RateSource) *TaxEngine {
	return &TaxEngine{
		Rates:  store,
		Remote: remote,
		Policy: DefaultPolicy(),
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *TaxEngine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// ValidateDeductions partitions deductions without computing any tax
func (e *TaxEngine) ValidateDeductions(deductions []domain.Deduction) domain.DeductionValidation {
	return ValidateDeductions(deductions)
}

// Calculate computes the full tax result for one input. Only structural input
// errors (wrapping domain.ErrInvalidInput) are returned; remote failures are
// absorbed by falling back to local rates and noted in the recommendations.
func (e *TaxEngine) Calculate(ctx context.Context, input domain.TaxFormInput) (*domain.TaxCalculationResult, error) {
	if e.Rates == nil {
		return nil, errors.New("tax engine has no rate store")
	}
	return e.calculate(ctx, input, e.Rates.Current())
}

// componentResult is one resolved component and whether it needed the fallback
type componentResult struct {
	outcome  domain.RateOutcome
	fellBack bool
}

type sourceCall func(ctx context.Context, src domain.RateSource) (domain.RateOutcome, error)

func (e *TaxEngine) calculate(ctx context.Context, input domain.TaxFormInput, table *rates.Table) (*domain.TaxCalculationResult, error) {
	in, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	local := NewLocalRateSource(table)
	deductions := ValidateDeductions(in.Deductions)

	taxable := in.Income.Sub(deductions.TotalValidAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	agi := in.Income.Sub(deductions.TotalOfType(domain.DeductionBusinessExpense))
	if agi.IsNegative() {
		agi = decimal.Zero
	}

	var federal, state, sales componentResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		req := domain.FederalRequest{
			Income:       in.Income,
			Deductions:   deductions.TotalValidAmount,
			FilingStatus: in.FilingStatus,
			TaxYear:      table.TaxYear,
		}
		var err error
		federal, err = e.resolve(gctx, domain.ComponentFederal, local, func(ctx context.Context, src domain.RateSource) (domain.RateOutcome, error) {
			return src.FederalTax(ctx, req)
		})
		return err
	})

	if in.HasState() {
		g.Go(func() error {
			req := domain.StateRequest{
				Income:       in.Income,
				State:        in.State,
				FilingStatus: in.FilingStatus,
				TaxYear:      table.TaxYear,
			}
			var err error
			state, err = e.resolve(gctx, domain.ComponentState, local, func(ctx context.Context, src domain.RateSource) (domain.RateOutcome, error) {
				return src.StateTax(ctx, req)
			})
			return err
		})
	}

	if in.SaleAmount != nil {
		g.Go(func() error {
			req := domain.SalesRequest{
				Amount:  *in.SaleAmount,
				State:   in.State,
				TaxYear: table.TaxYear,
			}
			var err error
			sales, err = e.resolve(gctx, domain.ComponentSales, local, func(ctx context.Context, src domain.RateSource) (domain.RateOutcome, error) {
				return src.SalesTax(ctx, req)
			})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	federalTax := federal.outcome.Amount.Round(2)
	stateTax := state.outcome.Amount.Round(2)
	salesTax := sales.outcome.Amount.Round(2)
	totalTax := federalTax.Add(stateTax).Add(salesTax)

	effectiveRate := decimal.Zero
	if in.Income.IsPositive() {
		effectiveRate = totalTax.Div(in.Income).Mul(hundred).Round(2)
		if effectiveRate.GreaterThan(hundred) {
			effectiveRate = hundred
		}
	}

	sources := map[string]string{domain.ComponentFederal: federal.outcome.Source}
	var fellBack []string
	if federal.fellBack {
		fellBack = append(fellBack, domain.ComponentFederal)
	}
	a := assessment{
		Income:            in.Income,
		TotalTax:          totalTax,
		FilingStatus:      in.FilingStatus,
		State:             in.State,
		DeductionsClaimed: len(in.Deductions),
		StandardDeduction: table.StandardDeduction(in.FilingStatus),
		TaxYear:           table.TaxYear,
		Invalid:           deductions,
	}
	if in.HasState() {
		sources[domain.ComponentState] = state.outcome.Source
		a.StateRate = &state.outcome
		if state.fellBack {
			fellBack = append(fellBack, domain.ComponentState)
		}
	}
	if in.SaleAmount != nil {
		sources[domain.ComponentSales] = sales.outcome.Source
		a.SalesRate = &sales.outcome
		if sales.fellBack {
			fellBack = append(fellBack, domain.ComponentSales)
		}
	}
	a.FellBack = fellBack

	result := &domain.TaxCalculationResult{
		TaxYear:             table.TaxYear,
		FilingStatus:        in.FilingStatus,
		State:               in.State,
		GrossIncome:         in.Income,
		AdjustedGrossIncome: agi,
		TotalDeductions:     deductions.TotalValidAmount,
		TaxableIncome:       taxable,
		FederalTax:          federalTax,
		StateTax:            stateTax,
		SalesTax:            salesTax,
		TotalTax:            totalTax,
		EffectiveRate:       effectiveRate,
		Confidence:          e.Policy.Confidence(in.Income, taxable),
		Recommendations:     e.Policy.Recommendations(a),
		Sources:             sources,
		InvalidDeductions:   deductions.InvalidDeductions,
	}

	e.Logger.Debugf("calculated %s tax for %s/%s: total=%s effective=%s%%",
		describeSources(sources), in.FilingStatus, in.State, totalTax, effectiveRate)
	return result, nil
}

// resolve computes one component, preferring the remote source and falling back to
// the local table on any remote failure.
func (e *TaxEngine) resolve(ctx context.Context, component string, local domain.RateSource, call sourceCall) (componentResult, error) {
	fellBack := false
	if e.Remote != nil {
		out, err := call(ctx, e.Remote)
		if err == nil && out.Amount.IsNegative() {
			err = &domain.SourceError{Op: component, Kind: domain.SourceErrorMalformed, Err: fmt.Errorf("negative tax %s", out.Amount)}
		}
		if err == nil {
			if out.Source == "" {
				out.Source = domain.SourceRemote
			}
			return componentResult{outcome: out}, nil
		}
		e.Logger.Warnf("remote %s tax unavailable, using local rates: %v", component, err)
		fellBack = true
	}

	out, err := call(ctx, local)
	if err != nil {
		return componentResult{}, fmt.Errorf("local %s tax calculation failed: %w", component, err)
	}
	return componentResult{outcome: out, fellBack: fellBack}, nil
}

func describeSources(sources map[string]string) string {
	for _, src := range sources {
		if src == domain.SourceRemote {
			return "remote-assisted"
		}
	}
	return "local"
}
