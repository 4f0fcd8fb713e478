package estimator

import (
	"context"
	"fmt"
	"math"
)

type mlpSpec struct {
	Layers []layerSpec `json:"layers"`
}

type layerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

type layer struct {
	weights [][]float64
	bias    []float64
	act     func(float64) float64
}

// mlp is a feed-forward network of dense layers.
type mlp struct {
	layers []layer
}

var activations = map[string]func(float64) float64{
	"":         func(x float64) float64 { return x },
	"identity": func(x float64) float64 { return x },
	"relu":     func(x float64) float64 { return math.Max(0, x) },
	"tanh":     math.Tanh,
	"logistic": func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
}

func (s *mlpSpec) build(inputs, outputs int) (Estimator, error) {
	if len(s.Layers) == 0 {
		return nil, fmt.Errorf("mlp: no layers")
	}

	net := &mlp{layers: make([]layer, 0, len(s.Layers))}
	width := inputs
	for i, ls := range s.Layers {
		name := fmt.Sprintf("mlp.layers[%d]", i)
		if len(ls.Weights) == 0 {
			return nil, fmt.Errorf("%s: empty weights", name)
		}
		if err := checkMatrix(name+".weights", ls.Weights, len(ls.Weights), width); err != nil {
			return nil, err
		}
		if len(ls.Bias) != len(ls.Weights) {
			return nil, fmt.Errorf("%s.bias: expected %d entries, got %d", name, len(ls.Weights), len(ls.Bias))
		}
		if err := checkFinite(name+".bias", ls.Bias); err != nil {
			return nil, err
		}
		act, ok := activations[ls.Activation]
		if !ok {
			return nil, fmt.Errorf("%s: unknown activation %q", name, ls.Activation)
		}
		net.layers = append(net.layers, layer{weights: ls.Weights, bias: ls.Bias, act: act})
		width = len(ls.Weights)
	}
	if width != outputs {
		return nil, fmt.Errorf("mlp: final layer width %d, expected %d", width, outputs)
	}
	return net, nil
}

func (n *mlp) Predict(_ context.Context, x []float64) ([]float64, error) {
	h := x
	for _, l := range n.layers {
		h = affine(l.weights, l.bias, h)
		for i, v := range h {
			h[i] = l.act(v)
		}
	}
	return h, nil
}
