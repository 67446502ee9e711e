package stockgenius

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalSampler draws one value from Normal(mean, stddev).
type NormalSampler interface {
	Sample(mean, stddev float64) float64
}

// normalSampler draws through gonum's distuv.Normal. The source is shared by every draw, so
// access is serialized.
type normalSampler struct {
	mu  sync.Mutex
	src rand.Source
}

// NewSeededSampler returns a sampler whose sequence of draws is fully determined by seed.
func NewSeededSampler(seed uint64) NormalSampler {
	return &normalSampler{src: rand.NewPCG(seed, seed)}
}

// NewSampler returns a sampler seeded from the runtime's random generator.
func NewSampler() NormalSampler {
	return &normalSampler{src: rand.NewPCG(rand.Uint64(), rand.Uint64())}
}

func (s *normalSampler) Sample(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return distuv.Normal{Mu: mean, Sigma: stddev, Src: s.src}.Rand()
}

// SimulationRequest is the input of a projection run.
type SimulationRequest struct {
	Amount       Amount  `json:"amount"`
	PeriodMonths int     `json:"period_months"`
	RiskTier     string  `json:"risk_tier"`
	Strategy     string  `json:"strategy"`
	Seed         *uint64 `json:"seed,omitempty"`
}

// SimulationResult is a single randomized projection. Values are in percent except the
// amounts; drawdown is reported as drawn and may be negative.
type SimulationResult struct {
	Amount          Amount  `json:"amount"`
	PeriodMonths    int     `json:"period_months"`
	AnnualReturnPct float64 `json:"annual_return_pct"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct"`
	TotalReturn     Amount  `json:"total_return"`
	TotalFactor     float64 `json:"total_factor"`
	Seed            *uint64 `json:"seed,omitempty"`
}

// SimulationParams are the distribution parameters derived from tier and strategy.
type SimulationParams struct {
	TotalFactor      float64
	AnnualReturnMean float64
	AnnualReturnStd  float64
	MaxDrawdownMean  float64
	MaxDrawdownStd   float64
}

// DeriveSimulationParams computes the normal-distribution parameters for a tier and strategy.
func DeriveSimulationParams(riskTier, strategy string) SimulationParams {
	tier, _ := ParseRiskTier(riskTier)
	total := tier.BaseRisk() * StrategyFactor(strategy)
	return SimulationParams{
		TotalFactor:      total,
		AnnualReturnMean: 6.0 + (total-1.0)*4.0,
		AnnualReturnStd:  2.0 * total,
		MaxDrawdownMean:  10.0 + (total-1.0)*15.0,
		MaxDrawdownStd:   5.0 * total,
	}
}

// Simulate runs one projection with the given sampler. The annual return is drawn before the
// drawdown; a seeded request ignores the sampler and uses a fresh seeded one.
func Simulate(req SimulationRequest, sampler NormalSampler) (*SimulationResult, error) {
	if !req.Amount.IsPositive() {
		return nil, invalidInputf("amount must be positive, got %s", req.Amount.String())
	}
	amount := req.Amount.InexactFloat64()
	if math.IsInf(amount, 0) {
		return nil, invalidInputf("amount %s is out of range", req.Amount.String())
	}
	if req.PeriodMonths <= 0 {
		return nil, invalidInputf("period_months must be positive, got %d", req.PeriodMonths)
	}
	if req.Seed != nil {
		sampler = NewSeededSampler(*req.Seed)
	}
	if sampler == nil {
		return nil, NewError(ErrCodeInternal, "no random sampler configured")
	}

	params := DeriveSimulationParams(req.RiskTier, req.Strategy)
	annualReturn := sampler.Sample(params.AnnualReturnMean, params.AnnualReturnStd)
	maxDrawdown := sampler.Sample(params.MaxDrawdownMean, params.MaxDrawdownStd)

	years := float64(req.PeriodMonths) / 12.0
	totalReturn := amount * (math.Pow(1+annualReturn/100, years) - 1)

	for _, check := range []struct {
		name  string
		value float64
	}{
		{"annual return", annualReturn},
		{"max drawdown", maxDrawdown},
		{"total return", totalReturn},
	} {
		if math.IsNaN(check.value) || math.IsInf(check.value, 0) {
			return nil, NewError(ErrCodeSimulationFailure, fmt.Sprintf("%s is not finite (%v)", check.name, check.value))
		}
	}

	return &SimulationResult{
		Amount:          Amount{req.Amount.Round(2)},
		PeriodMonths:    req.PeriodMonths,
		AnnualReturnPct: round2(annualReturn),
		MaxDrawdownPct:  round2(maxDrawdown),
		TotalReturn:     roundedAmount(totalReturn),
		TotalFactor:     params.TotalFactor,
		Seed:            req.Seed,
	}, nil
}

// Simulate runs one projection with the core's sampler.
func (c *Core) Simulate(req SimulationRequest) (*SimulationResult, error) {
	result, err := Simulate(req, c.sampler)
	if err != nil {
		c.Logger().Warn("simulation failed", "code", CodeOf(err), "err", err)
		return nil, err
	}
	c.Logger().Debug("simulation completed",
		"amount", result.Amount.String(),
		"period_months", result.PeriodMonths,
		"total_factor", result.TotalFactor,
	)
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
