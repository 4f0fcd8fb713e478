package estimator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wingDoc = `{"name": "genesis_wing", "kind": "linear", "inputs": 3, "outputs": 2,
		"linear": {"coef": [[1, 0, 0], [0, 1, 0]], "intercept": [0, 0]}}`
	rayDoc = `{"name": "genesis_ray", "kind": "linear", "inputs": 4, "outputs": 4,
		"linear": {"coef": [[1, 0, 0, 0], [0, 1, 0, 0], [0, 0, 1, 0], [0, 0, 0, 1]], "intercept": [0, 0, 0, 0]}}`
)

func writeModels(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	wing := filepath.Join(dir, "genesis_wing.json")
	ray := filepath.Join(dir, "genesis_ray.json")
	require.NoError(t, os.WriteFile(wing, []byte(wingDoc), 0o644))
	require.NoError(t, os.WriteFile(ray, []byte(rayDoc), 0o644))
	return wing, ray
}

func TestRegistryLoadsOnce(t *testing.T) {
	wing, ray := writeModels(t)
	loader := NewLoader(nil, nil)

	var r Registry
	require.NoError(t, r.Load(context.Background(), loader, wing, ray))
	first := r.Wing()
	require.NotNil(t, first)
	assert.Equal(t, "genesis_ray", r.Ray().Info().Name)

	// The sources are gone; a second Load must not touch them
	require.NoError(t, os.Remove(wing))
	require.NoError(t, os.Remove(ray))
	require.NoError(t, r.Load(context.Background(), loader, wing, ray))
	assert.Same(t, first, r.Wing())

	w, rr, err := r.Pair()
	require.NoError(t, err)
	assert.Same(t, first, w)
	assert.Same(t, r.Ray(), rr)
}

func TestRegistryLoadFailureIsSticky(t *testing.T) {
	wing, _ := writeModels(t)
	missing := filepath.Join(t.TempDir(), "genesis_ray.json")

	var r Registry
	err := r.Load(context.Background(), NewLoader(nil, nil), wing, missing)
	var lerr *ArtifactLoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, missing, lerr.Source)
	assert.Nil(t, r.Wing())
	assert.Nil(t, r.Ray())

	// Writing the file afterwards does not trigger a reload
	require.NoError(t, os.WriteFile(missing, []byte(rayDoc), 0o644))
	assert.ErrorAs(t, r.Load(context.Background(), NewLoader(nil, nil), wing, missing), &lerr)

	_, _, err = r.Pair()
	assert.Error(t, err)
}

func TestRegistryRejectsSwappedArtifacts(t *testing.T) {
	wing, ray := writeModels(t)

	var r Registry
	err := r.Load(context.Background(), NewLoader(nil, nil), ray, wing)

	var lerr *ArtifactLoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "incompatible artifact", lerr.Reason)
}

func TestRegistryPairBeforeLoad(t *testing.T) {
	var r Registry
	_, _, err := r.Pair()
	assert.EqualError(t, err, "estimators not loaded")
}
