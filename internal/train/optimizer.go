package train

import "math"

// AdamW hyperparameters. Weight decay is decoupled from the gradient
// moments (Loshchilov & Hutter).
const (
	adamBeta1       = 0.9
	adamBeta2       = 0.999
	adamEps         = 1e-8
	adamWeightDecay = 0.01
)

// adamW holds optimizer state for one flat parameter vector. The learning
// rate decays linearly from lr to zero over totalSteps, a warmup-free
// linear schedule; totalSteps <= 0 keeps the rate constant.
type adamW struct {
	lr         float64
	totalSteps int
	t          int
	m          []float64
	v          []float64
}

func newAdamW(n int, lr float64, totalSteps int) *adamW {
	return &adamW{
		lr:         lr,
		totalSteps: totalSteps,
		m:          make([]float64, n),
		v:          make([]float64, n),
	}
}

// Step applies one AdamW update to params in place.
func (o *adamW) Step(params, grad []float64) {
	o.t++
	lr := o.lr
	if o.totalSteps > 0 {
		remaining := float64(o.totalSteps - (o.t - 1))
		if remaining < 0 {
			remaining = 0
		}
		lr *= remaining / float64(o.totalSteps)
	}

	correct1 := 1 - math.Pow(adamBeta1, float64(o.t))
	correct2 := 1 - math.Pow(adamBeta2, float64(o.t))

	for i := range params {
		g := grad[i]
		o.m[i] = adamBeta1*o.m[i] + (1-adamBeta1)*g
		o.v[i] = adamBeta2*o.v[i] + (1-adamBeta2)*g*g

		mHat := o.m[i] / correct1
		vHat := o.v[i] / correct2

		params[i] -= lr * adamWeightDecay * params[i]
		params[i] -= lr * mHat / (math.Sqrt(vHat) + adamEps)
	}
}
