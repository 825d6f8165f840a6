package l1_service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"propertysim/internal/domain"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// added to the diagonal on a second factorization attempt so that
// semi-definite matrices (e.g. two drivers with rho=1) can still be used
const choleskyRidge = 1e-9

// keeps copula quantiles away from 0 and 1 where they blow up
const copulaEpsilon = 1e-12

// DriverSampler draws one set of driver deviates per trial. It is built
// once per run and is read-only afterwards, so workers can share it.
type DriverSampler struct {
	uncertainties []domain.DriverUncertainty
	// lower is the row-major Cholesky factor of the correlation matrix,
	// nil when drivers are sampled independently
	lower    []float64
	n        int
	fellBack bool
	warnings []string
}

// NewDriverSampler validates and decomposes the correlation matrix. An
// invalid matrix never fails the run: it is reported as a warning and
// the drivers are sampled independently.
func NewDriverSampler(
	uncertainties domain.Uncertainties,
	correlation domain.CorrelationMatrix,
	log *zap.SugaredLogger,
) *DriverSampler {
	s := &DriverSampler{
		n: len(domain.Drivers),
	}
	for _, d := range domain.Drivers {
		s.uncertainties = append(s.uncertainties, uncertainties.Get(d))
	}

	if len(correlation) == 0 {
		return s
	}

	lower, err := s.decompose(correlation)
	if err != nil {
		warning := fmt.Sprintf("correlation matrix ignored, drivers sampled independently: %s", err.Error())
		s.fellBack = true
		s.warnings = append(s.warnings, warning)
		if log != nil {
			log.Warnw("falling back to independent sampling", "reason", err.Error())
		}
		return s
	}
	s.lower = lower

	return s
}

func (s *DriverSampler) Warnings() []string {
	return s.warnings
}

// FellBack reports whether a supplied correlation matrix was rejected.
func (s *DriverSampler) FellBack() bool {
	return s.fellBack
}

func (s *DriverSampler) Correlated() bool {
	return s.lower != nil
}

func (s *DriverSampler) decompose(correlation domain.CorrelationMatrix) ([]float64, error) {
	names := map[string]bool{}
	for _, u := range s.uncertainties {
		names[u.Name] = true
	}
	for a, row := range correlation {
		if !names[a] {
			return nil, fmt.Errorf("unknown driver %q", a)
		}
		for b, rho := range row {
			if !names[b] {
				return nil, fmt.Errorf("unknown driver %q", b)
			}
			if math.IsNaN(rho) || rho < -1 || rho > 1 {
				return nil, fmt.Errorf("coefficient for (%s, %s) out of range: %v", a, b, rho)
			}
			if a == b && math.Abs(rho-1) > 1e-9 {
				return nil, fmt.Errorf("diagonal entry for %s must be 1, got %v", a, rho)
			}
			if back, ok := correlation[b][a]; ok && math.Abs(back-rho) > 1e-9 {
				return nil, fmt.Errorf("matrix is not symmetric: (%s, %s)=%v but (%s, %s)=%v", a, b, rho, b, a, back)
			}
		}
	}

	data := make([]float64, s.n*s.n)
	identity := true
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			if i == j {
				data[i*s.n+j] = 1
				continue
			}
			rho, _ := correlation.Lookup(s.uncertainties[i].Name, s.uncertainties[j].Name)
			data[i*s.n+j] = rho
			if rho != 0 {
				identity = false
			}
		}
	}
	// the identity factor is the identity, skip the matrix work
	if identity {
		return nil, nil
	}

	sym := mat.NewSymDense(s.n, data)
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		for i := 0; i < s.n; i++ {
			sym.SetSym(i, i, sym.At(i, i)+choleskyRidge)
		}
		if ok := chol.Factorize(sym); !ok {
			return nil, fmt.Errorf("matrix is not positive semi-definite")
		}
	}

	var l mat.TriDense
	chol.LTo(&l)

	lower := make([]float64, s.n*s.n)
	for i := 0; i < s.n; i++ {
		for j := 0; j <= i; j++ {
			lower[i*s.n+j] = l.At(i, j)
		}
	}

	return lower, nil
}

// Sample draws the deviates for one trial. Independent normals are
// always drawn for every driver in a fixed order so that a seeded
// stream maps to the same scenario regardless of which drivers vary.
func (s *DriverSampler) Sample(rng *rand.Rand) domain.SampledDrivers {
	z := make([]float64, s.n)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	if s.lower != nil {
		correlated := make([]float64, s.n)
		for i := 0; i < s.n; i++ {
			sum := 0.0
			for j := 0; j <= i; j++ {
				sum += s.lower[i*s.n+j] * z[j]
			}
			correlated[i] = sum
		}
		z = correlated
	}

	out := domain.NeutralDrivers()
	for i, d := range domain.Drivers {
		m := Deviate(s.uncertainties[i], z[i])
		switch d {
		case domain.DriverRent:
			out.Rent = m
		case domain.DriverVacancy:
			out.Vacancy = m
		case domain.DriverCapitalGrowth:
			out.CapitalGrowth = m
		case domain.DriverInterestRate:
			out.InterestRate = m
		}
	}

	return out
}

// Deviate turns a standard normal draw into a multiplier with mean 1
// and standard deviation VariancePct/100 under the driver's
// distribution. Non-normal shapes go through the normal CDF so that
// correlated draws keep their rank correlation.
func Deviate(u domain.DriverUncertainty, z float64) float64 {
	sd := u.VariancePct / 100
	if sd == 0 {
		return 1
	}

	var m float64
	switch u.Kind {
	case domain.DistributionLogNormal:
		sigma := math.Sqrt(math.Log1p(sd * sd))
		m = math.Exp(-sigma*sigma/2 + sigma*z)
	case domain.DistributionUniform:
		half := sd * math.Sqrt(3)
		m = distuv.Uniform{Min: 1 - half, Max: 1 + half}.Quantile(unitQuantile(z))
	case domain.DistributionTriangular:
		half := sd * math.Sqrt(6)
		m = distuv.NewTriangle(1-half, 1+half, 1, nil).Quantile(unitQuantile(z))
	default:
		m = 1 + sd*z
	}

	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 1
	}
	return m
}

func unitQuantile(z float64) float64 {
	p := distuv.UnitNormal.CDF(z)
	return math.Min(math.Max(p, copulaEpsilon), 1-copulaEpsilon)
}

// NewTrialRand gives each trial its own stream so results do not depend
// on how trials were scheduled across workers.
func NewTrialRand(seed uint64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(trial)))
}
