package estimator

import (
	"context"
	"fmt"
)

const (
	aggregateMean  = "mean"
	aggregateBoost = "boost"
)

type forestSpec struct {
	Aggregate    string     `json:"aggregate"`
	Base         []float64  `json:"base,omitempty"`
	LearningRate float64    `json:"learning_rate,omitempty"`
	Trees        []treeSpec `json:"trees"`
}

type treeSpec struct {
	Nodes []nodeSpec `json:"nodes"`
}

// nodeSpec is one node of a regression tree. Left == -1 marks a leaf.
type nodeSpec struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// forest is an ensemble of regression trees, either averaged or boosted.
type forest struct {
	boost bool
	base  []float64
	rate  float64
	trees [][]nodeSpec
}

func (s *forestSpec) build(inputs, outputs int) (Estimator, error) {
	if len(s.Trees) == 0 {
		return nil, fmt.Errorf("forest: no trees")
	}

	f := &forest{trees: make([][]nodeSpec, 0, len(s.Trees))}
	switch s.Aggregate {
	case aggregateMean, "":
	case aggregateBoost:
		f.boost = true
		f.rate = s.LearningRate
		if f.rate == 0 {
			f.rate = 1
		}
		f.base = s.Base
		if f.base == nil {
			f.base = make([]float64, outputs)
		}
		if len(f.base) != outputs {
			return nil, fmt.Errorf("forest.base: expected %d entries, got %d", outputs, len(f.base))
		}
		if err := checkFinite("forest.base", f.base); err != nil {
			return nil, err
		}
		if !finite(f.rate) {
			return nil, fmt.Errorf("forest.learning_rate: non-finite")
		}
	default:
		return nil, fmt.Errorf("forest: unknown aggregate %q", s.Aggregate)
	}

	for t, tree := range s.Trees {
		if err := checkTree(tree.Nodes, inputs, outputs); err != nil {
			return nil, fmt.Errorf("forest.trees[%d]: %w", t, err)
		}
		f.trees = append(f.trees, tree.Nodes)
	}
	return f, nil
}

// checkTree requires children to follow their parent so that every walk
// terminates.
func checkTree(nodes []nodeSpec, inputs, outputs int) error {
	if len(nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range nodes {
		if n.Left == -1 {
			if len(n.Value) != outputs {
				return fmt.Errorf("leaf %d: expected %d values, got %d", i, outputs, len(n.Value))
			}
			if err := checkFinite(fmt.Sprintf("leaf %d", i), n.Value); err != nil {
				return err
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= inputs {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return fmt.Errorf("node %d: non-finite threshold", i)
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (f *forest) Predict(_ context.Context, x []float64) ([]float64, error) {
	out := make([]float64, len(f.trees[0][leafIndex(f.trees[0], x)].Value))
	for _, tree := range f.trees {
		leaf := tree[leafIndex(tree, x)].Value
		for i, v := range leaf {
			out[i] += v
		}
	}

	if f.boost {
		for i := range out {
			out[i] = f.base[i] + f.rate*out[i]
		}
		return out, nil
	}

	n := float64(len(f.trees))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

// leafIndex walks a tree; samples with x <= threshold go left.
func leafIndex(tree []nodeSpec, x []float64) int {
	i := 0
	for tree[i].Left != -1 {
		if x[tree[i].Feature] <= tree[i].Threshold {
			i = tree[i].Left
		} else {
			i = tree[i].Right
		}
	}
	return i
}
