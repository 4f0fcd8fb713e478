package estimator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifact stores an artifact document in a temp dir and returns its path
func writeArtifact(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func loadWing(t *testing.T, doc string) (*Model, error) {
	t.Helper()
	return NewLoader(nil, nil).Load(context.Background(), writeArtifact(t, doc), Wing.Inputs, Wing.Outputs)
}

func TestLinear(t *testing.T) {
	m, err := loadWing(t, `{
		"name": "wing_linear", "kind": "linear", "inputs": 3, "outputs": 2,
		"linear": {"coef": [[1, 2, 3], [0, -1, 0.5]], "intercept": [0.5, -1]}
	}`)
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{14.5, -1.5}, y)

	info := m.Info()
	assert.Equal(t, "wing_linear", info.Name)
	assert.Equal(t, KindLinear, info.Kind)
	assert.Equal(t, 3, info.Inputs)
	assert.Equal(t, 2, info.Outputs)
}

func TestLinearWithScalers(t *testing.T) {
	m, err := loadWing(t, `{
		"kind": "linear", "inputs": 3, "outputs": 2,
		"input_scaler": {"mean": [1, 1, 1], "scale": [1, 1, 2]},
		"output_scaler": {"mean": [10, 0], "scale": [2, 1]},
		"linear": {"coef": [[1, 2, 3], [0, -1, 0.5]], "intercept": [0.5, -1]}
	}`)
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{21, -1.5}, y)
}

func TestMLP(t *testing.T) {
	m, err := loadWing(t, `{
		"kind": "mlp", "inputs": 3, "outputs": 2,
		"mlp": {"layers": [
			{"weights": [[1, 0, 0], [0, 1, 0]], "bias": [0, -5], "activation": "relu"},
			{"weights": [[1, 1], [2, -1]], "bias": [1, 0], "activation": "identity"}
		]}
	}`)
	require.NoError(t, err)

	features := []float64{3, 2, 1}
	y, err := m.Predict(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, y)
	assert.Equal(t, []float64{3, 2, 1}, features, "features must not be modified")
}

const forestTrees = `"trees": [
	{"nodes": [
		{"feature": 0, "threshold": 38, "left": 1, "right": 2},
		{"left": -1, "right": -1, "value": [1, 10]},
		{"left": -1, "right": -1, "value": [3, 30]}
	]},
	{"nodes": [{"left": -1, "right": -1, "value": [5, 50]}]}
]`

func TestForestMean(t *testing.T) {
	m, err := loadWing(t, `{"kind": "forest", "inputs": 3, "outputs": 2,
		"forest": {"aggregate": "mean", `+forestTrees+`}}`)
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), []float64{37.5, -20, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 30}, y)

	// threshold goes left when equal
	y, err = m.Predict(context.Background(), []float64{38, -20, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 30}, y)

	y, err = m.Predict(context.Background(), []float64{39, -20, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 40}, y)
}

func TestForestBoost(t *testing.T) {
	m, err := loadWing(t, `{"kind": "forest", "inputs": 3, "outputs": 2,
		"forest": {"aggregate": "boost", "base": [100, 0], "learning_rate": 0.5, `+forestTrees+`}}`)
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), []float64{37.5, -20, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{103, 30}, y)
}

func TestModelRejectsWrongFeatureCount(t *testing.T) {
	m, err := loadWing(t, `{"kind": "linear", "inputs": 3, "outputs": 2,
		"linear": {"coef": [[1, 2, 3], [0, -1, 0.5]], "intercept": [0.5, -1]}}`)
	require.NoError(t, err)

	_, err = m.Predict(context.Background(), []float64{1, 2})
	assert.Error(t, err)
}

func TestLoadIncompatibleArtifacts(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed json", `{"kind": "linear",`},
		{"unknown field", `{"kind": "linear", "inputs": 3, "outputs": 2, "weights": []}`},
		{"unknown kind", `{"kind": "svm", "inputs": 3, "outputs": 2}`},
		{"arity mismatch", `{"kind": "linear", "inputs": 4, "outputs": 4,
			"linear": {"coef": [[1,1,1,1],[1,1,1,1],[1,1,1,1],[1,1,1,1]], "intercept": [0,0,0,0]}}`},
		{"missing section", `{"kind": "mlp", "inputs": 3, "outputs": 2}`},
		{"coef shape", `{"kind": "linear", "inputs": 3, "outputs": 2,
			"linear": {"coef": [[1, 2], [0, -1]], "intercept": [0.5, -1]}}`},
		{"intercept length", `{"kind": "linear", "inputs": 3, "outputs": 2,
			"linear": {"coef": [[1, 2, 3], [0, -1, 0.5]], "intercept": [0.5]}}`},
		{"zero scale", `{"kind": "linear", "inputs": 3, "outputs": 2,
			"input_scaler": {"mean": [0, 0, 0], "scale": [1, 0, 1]},
			"linear": {"coef": [[1, 2, 3], [0, -1, 0.5]], "intercept": [0.5, -1]}}`},
		{"mlp final width", `{"kind": "mlp", "inputs": 3, "outputs": 2,
			"mlp": {"layers": [{"weights": [[1, 0, 0]], "bias": [0], "activation": "relu"}]}}`},
		{"mlp activation", `{"kind": "mlp", "inputs": 3, "outputs": 2,
			"mlp": {"layers": [{"weights": [[1, 0, 0], [0, 1, 0]], "bias": [0, 0], "activation": "softsign"}]}}`},
		{"tree cycle", `{"kind": "forest", "inputs": 3, "outputs": 2, "forest": {"trees": [{"nodes": [
			{"feature": 0, "threshold": 38, "left": 0, "right": 1},
			{"left": -1, "right": -1, "value": [1, 1]}]}]}}`},
		{"tree feature", `{"kind": "forest", "inputs": 3, "outputs": 2, "forest": {"trees": [{"nodes": [
			{"feature": 5, "threshold": 38, "left": 1, "right": 2},
			{"left": -1, "right": -1, "value": [1, 1]},
			{"left": -1, "right": -1, "value": [2, 2]}]}]}}`},
		{"leaf width", `{"kind": "forest", "inputs": 3, "outputs": 2, "forest": {"trees": [{"nodes": [
			{"left": -1, "right": -1, "value": [1]}]}]}}`},
		{"forest aggregate", `{"kind": "forest", "inputs": 3, "outputs": 2, "forest": {"aggregate": "median", "trees": [{"nodes": [
			{"left": -1, "right": -1, "value": [1, 1]}]}]}}`},
		{"remote url", `{"kind": "remote", "inputs": 3, "outputs": 2, "remote": {"url": "ftp://models"}}`},
		{"remote timeout", `{"kind": "remote", "inputs": 3, "outputs": 2, "remote": {"url": "http://models:8000", "timeout": "soon"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := loadWing(t, tt.doc)

			assert.Nil(t, m)
			var lerr *ArtifactLoadError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, "incompatible artifact", lerr.Reason)
		})
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	source := filepath.Join(t.TempDir(), "genesis_wing.json")

	_, err := NewLoader(nil, nil).Load(context.Background(), source, 3, 2)

	var lerr *ArtifactLoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "missing artifact", lerr.Reason)
	assert.Equal(t, source, lerr.Source)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUnreadableArtifact(t *testing.T) {
	// A directory cannot be read as a file
	_, err := NewLoader(nil, nil).Load(context.Background(), t.TempDir(), 3, 2)

	var lerr *ArtifactLoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "unreadable artifact", lerr.Reason)
}

// stubStore implements storage.ArtifactStore for testing
type stubStore map[string][]byte

func (s stubStore) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	data, ok := s[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s/%s", bucket, key)
	}
	return data, nil
}

func TestLoadFromObjectStore(t *testing.T) {
	store := stubStore{
		"models/genesis_wing.json": []byte(`{"kind": "linear", "inputs": 3, "outputs": 2,
			"linear": {"coef": [[1, 0, 0], [0, 1, 0]], "intercept": [0, 0]}}`),
	}
	loader := NewLoader(store, nil)

	m, err := loader.Load(context.Background(), "s3://models/genesis_wing.json", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "s3://models/genesis_wing.json", m.Info().Source)

	_, err = loader.Load(context.Background(), "s3://models/genesis_ray.json", 4, 4)
	var lerr *ArtifactLoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "unreadable artifact", lerr.Reason)

	_, err = NewLoader(nil, nil).Load(context.Background(), "s3://models/genesis_wing.json", 3, 2)
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Error(), "no artifact store configured")
}

func TestModelRejectsScalerWidthMismatch(t *testing.T) {
	m := &Model{
		info:     Info{Name: "genesis_wing", Inputs: 3, Outputs: 2},
		outScale: &scaler{mean: []float64{0, 0}, scale: []float64{1, 1}},
		impl: Func(func(ctx context.Context, x []float64) ([]float64, error) {
			return []float64{1, 2, 3}, nil
		}),
	}

	_, err := m.Predict(context.Background(), []float64{38, -20, 1})
	assert.EqualError(t, err, "genesis_wing: backend returned 3 values, output scaler expects 2")
}

func TestRemote(t *testing.T) {
	received := make(chan []float64, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		received <- req.Features
		w.Write([]byte(`{"prediction": [50, 5]}`))
	}))
	defer srv.Close()

	m, err := loadWing(t, fmt.Sprintf(`{"kind": "remote", "inputs": 3, "outputs": 2,
		"remote": {"url": %q, "timeout": "2s"}}`, srv.URL+"/predict/wing"))
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), []float64{38, -20, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 5}, y)
	assert.Equal(t, []float64{38, -20, 1}, <-received)
}

func TestRemoteErrors(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "model crashed", http.StatusInternalServerError)
		case "/slow":
			<-release
		case "/null":
			w.Write([]byte(`{"prediction": [50.0, null]}`))
		default:
			w.Write([]byte(`{"error": "bad features"}`))
		}
	}))
	defer srv.Close()
	defer close(release)

	for _, tc := range []struct {
		path string
		want string
	}{
		{"/fail", "status=500"},
		{"/slow", "model server request failed"},
		{"/null", "model server: null at output 1"},
		{"/app-error", "bad features"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			m, err := loadWing(t, fmt.Sprintf(`{"kind": "remote", "inputs": 3, "outputs": 2,
				"remote": {"url": %q, "timeout": "50ms"}}`, srv.URL+tc.path))
			require.NoError(t, err)

			y, err := m.Predict(context.Background(), []float64{38, -20, 1})
			require.Error(t, err)
			assert.Nil(t, y)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRemoteHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	m, err := loadWing(t, fmt.Sprintf(`{"kind": "remote", "inputs": 3, "outputs": 2, "remote": {"url": %q}}`, srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = m.Predict(ctx, []float64{38, -20, 1})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
