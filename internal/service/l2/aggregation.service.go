package l2_service

import (
	"fmt"
	"math"
	"propertysim/internal/domain"
	"sort"

	"github.com/montanaflynn/stats"
)

const DefaultHistogramBuckets = 30

// TrialPopulation is what the driver keeps per trial. Ledgers are not
// kept; the representative one is re-projected from its trial number.
type TrialPopulation struct {
	Trials   []int
	GrossNpv []float64
	NetNpv   []float64
	Irr      []*float64
}

func NewTrialPopulation(n int) *TrialPopulation {
	return &TrialPopulation{
		Trials:   make([]int, n),
		GrossNpv: make([]float64, n),
		NetNpv:   make([]float64, n),
		Irr:      make([]*float64, n),
	}
}

func (p *TrialPopulation) Len() int {
	return len(p.Trials)
}

// Npv returns the population for the requested mode.
func (p *TrialPopulation) Npv(mode domain.NpvMode) []float64 {
	if mode == domain.NpvModeNet {
		return p.NetNpv
	}
	return p.GrossNpv
}

type AggregateResult struct {
	Npv               domain.Distribution
	NetNpv            domain.Distribution
	Irr               *domain.Distribution
	UndefinedIrrCount int
	ProbabilityOfLoss float64

	NpvHistogram        []domain.HistogramBucket
	IrrHistogram        []domain.HistogramBucket
	NpvProbabilityCurve []domain.ProbabilityPoint

	// MedianTrial is the trial whose reported NPV sits closest to the
	// median; its ledger is shown as the representative breakdown
	MedianTrial int
}

type AggregationService interface {
	Aggregate(population *TrialPopulation, mode domain.NpvMode) (*AggregateResult, error)
}

type aggregationServiceHandler struct {
	HistogramBuckets int
}

func NewAggregationService(histogramBuckets int) AggregationService {
	if histogramBuckets < 1 {
		histogramBuckets = DefaultHistogramBuckets
	}
	return aggregationServiceHandler{
		HistogramBuckets: histogramBuckets,
	}
}

func (h aggregationServiceHandler) Aggregate(population *TrialPopulation, mode domain.NpvMode) (*AggregateResult, error) {
	if population == nil || population.Len() == 0 {
		return nil, fmt.Errorf("cannot aggregate an empty trial population")
	}

	npv := population.Npv(mode)
	npvDist, err := Summarize(npv)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize npv: %w", err)
	}
	netDist := npvDist
	if mode != domain.NpvModeNet {
		d, err := Summarize(population.NetNpv)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize net npv: %w", err)
		}
		netDist = d
	}

	irrs := []float64{}
	for _, irr := range population.Irr {
		if irr != nil {
			irrs = append(irrs, *irr)
		}
	}

	out := &AggregateResult{
		Npv:               *npvDist,
		NetNpv:            *netDist,
		UndefinedIrrCount: population.Len() - len(irrs),
		ProbabilityOfLoss: ProbabilityBelow(population.NetNpv, 0),
		NpvHistogram:      Histogram(npv, h.HistogramBuckets),
		IrrHistogram:      []domain.HistogramBucket{},
		MedianTrial:       population.Trials[closestTo(npv, npvDist.Median)],
	}
	out.NpvProbabilityCurve = ProbabilityCurve(npv, out.NpvHistogram)

	if len(irrs) > 0 {
		irrDist, err := Summarize(irrs)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize irr: %w", err)
		}
		out.Irr = irrDist
		out.IrrHistogram = Histogram(irrs, h.HistogramBuckets)
	}

	return out, nil
}

// Summarize computes the percentile and moment statistics of values.
func Summarize(values []float64) (*domain.Distribution, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("cannot summarize 0 values")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, err := stats.Mean(sorted)
	if err != nil {
		return nil, err
	}
	stdev := 0.0
	if len(sorted) > 1 {
		stdev, err = stats.StandardDeviationSample(sorted)
		if err != nil {
			return nil, err
		}
	}
	lowest, err := stats.Min(sorted)
	if err != nil {
		return nil, err
	}
	highest, err := stats.Max(sorted)
	if err != nil {
		return nil, err
	}

	return &domain.Distribution{
		P10:    Percentile(sorted, 10),
		Median: Percentile(sorted, 50),
		P90:    Percentile(sorted, 90),
		Mean:   mean,
		StdDev: stdev,
		Min:    lowest,
		Max:    highest,
	}, nil
}

// Percentile interpolates linearly between closest ranks at
// p/100*(n-1). sorted must be ascending; monotonic in p by construction.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	p = math.Min(math.Max(p, 0), 100)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Histogram splits [min, max] into equal-width buckets. Every value lands
// in a bucket, so counts always sum to len(values). A population with no
// spread collapses to one bucket.
func Histogram(values []float64, buckets int) []domain.HistogramBucket {
	if len(values) == 0 {
		return []domain.HistogramBucket{}
	}
	if buckets < 1 {
		buckets = DefaultHistogramBuckets
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []domain.HistogramBucket{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(buckets)
	out := make([]domain.HistogramBucket, buckets)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[buckets-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= buckets {
			idx = buckets - 1
		}
		out[idx].Count++
	}

	return out
}

// ProbabilityCurve is the empirical CDF evaluated at each bucket's upper
// edge.
func ProbabilityCurve(values []float64, histogram []domain.HistogramBucket) []domain.ProbabilityPoint {
	out := make([]domain.ProbabilityPoint, 0, len(histogram))
	if len(values) == 0 {
		return out
	}
	seen := 0
	for _, b := range histogram {
		seen += b.Count
		out = append(out, domain.ProbabilityPoint{
			Value:                 b.Upper,
			CumulativeProbability: float64(seen) / float64(len(values)),
		})
	}
	return out
}

// ProbabilityBelow is the share of values strictly less than threshold.
func ProbabilityBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v < threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

// CapRate is year-1 NOI over asking price.
func CapRate(yearOneNoi, askingPrice float64) float64 {
	if askingPrice <= 0 {
		return 0
	}
	return yearOneNoi / askingPrice
}

func closestTo(values []float64, target float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range values {
		if d := math.Abs(v - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
