package estimator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Backend kinds understood by the loader.
const (
	KindLinear = "linear"
	KindMLP    = "mlp"
	KindForest = "forest"
	KindRemote = "remote"
)

// artifact is the exported form of a fitted model.
type artifact struct {
	Name         string      `json:"name"`
	Kind         string      `json:"kind"`
	Inputs       int         `json:"inputs"`
	Outputs      int         `json:"outputs"`
	InputScaler  *scalerSpec `json:"input_scaler,omitempty"`
	OutputScaler *scalerSpec `json:"output_scaler,omitempty"`
	Linear       *linearSpec `json:"linear,omitempty"`
	MLP          *mlpSpec    `json:"mlp,omitempty"`
	Forest       *forestSpec `json:"forest,omitempty"`
	Remote       *remoteSpec `json:"remote,omitempty"`
}

type scalerSpec struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// decodeArtifact parses and checks an artifact document against the arity
// the caller expects.
func decodeArtifact(data []byte, inputs, outputs int) (*artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var a artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if a.Inputs != inputs || a.Outputs != outputs {
		return nil, fmt.Errorf("arity %d->%d, expected %d->%d", a.Inputs, a.Outputs, inputs, outputs)
	}
	return &a, nil
}

// build turns a decoded artifact into a Model.
func (a *artifact) build(source string, client *http.Client) (*Model, error) {
	m := &Model{
		info: Info{
			Name:    a.Name,
			Kind:    a.Kind,
			Inputs:  a.Inputs,
			Outputs: a.Outputs,
			Source:  source,
		},
	}
	if m.info.Name == "" {
		m.info.Name = source
	}

	var err error
	if m.inScale, err = a.InputScaler.build("input_scaler", a.Inputs); err != nil {
		return nil, err
	}
	if m.outScale, err = a.OutputScaler.build("output_scaler", a.Outputs); err != nil {
		return nil, err
	}

	switch a.Kind {
	case KindLinear:
		if a.Linear == nil {
			return nil, fmt.Errorf("kind %q without linear section", a.Kind)
		}
		m.impl, err = a.Linear.build(a.Inputs, a.Outputs)
	case KindMLP:
		if a.MLP == nil {
			return nil, fmt.Errorf("kind %q without mlp section", a.Kind)
		}
		m.impl, err = a.MLP.build(a.Inputs, a.Outputs)
	case KindForest:
		if a.Forest == nil {
			return nil, fmt.Errorf("kind %q without forest section", a.Kind)
		}
		m.impl, err = a.Forest.build(a.Inputs, a.Outputs)
	case KindRemote:
		if a.Remote == nil {
			return nil, fmt.Errorf("kind %q without remote section", a.Kind)
		}
		m.impl, err = a.Remote.build(client)
	default:
		return nil, fmt.Errorf("unknown kind %q", a.Kind)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *scalerSpec) build(name string, width int) (*scaler, error) {
	if s == nil {
		return nil, nil
	}
	if len(s.Mean) != width || len(s.Scale) != width {
		return nil, fmt.Errorf("%s: expected %d entries", name, width)
	}
	for i, v := range s.Scale {
		if v == 0 || !finite(v) || !finite(s.Mean[i]) {
			return nil, fmt.Errorf("%s: invalid entry %d", name, i)
		}
	}
	return &scaler{mean: s.Mean, scale: s.Scale}, nil
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%s: expected %d rows, got %d", name, rows, len(m))
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s: row %d has %d columns, expected %d", name, i, len(row), cols)
		}
		if err := checkFinite(name, row); err != nil {
			return err
		}
	}
	return nil
}

func checkFinite(name string, v []float64) error {
	for i, x := range v {
		if !finite(x) {
			return fmt.Errorf("%s: non-finite value at %d", name, i)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", s)
	}
	return d, nil
}
