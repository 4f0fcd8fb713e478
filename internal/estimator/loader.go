package estimator

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/RMahshie/genesis/internal/storage"
	"github.com/rs/zerolog/log"
)

// Loader reads artifacts from the filesystem or object storage.
type Loader struct {
	store  storage.ArtifactStore
	client *http.Client
}

// NewLoader creates a loader. store may be nil when no s3:// sources are
// used; client is shared by remote estimators and may be nil.
func NewLoader(store storage.ArtifactStore, client *http.Client) *Loader {
	return &Loader{store: store, client: client}
}

// Load reads the artifact at source and checks it maps inputs features to
// outputs predictions. Every failure is an *ArtifactLoadError.
func (l *Loader) Load(ctx context.Context, source string, inputs, outputs int) (*Model, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	a, err := decodeArtifact(data, inputs, outputs)
	if err != nil {
		return nil, loadError(source, "incompatible artifact", err)
	}

	m, err := a.build(source, l.client)
	if err != nil {
		return nil, loadError(source, "incompatible artifact", err)
	}

	log.Info().
		Str("source", source).
		Str("name", m.info.Name).
		Str("kind", m.info.Kind).
		Int("inputs", inputs).
		Int("outputs", outputs).
		Msg("Estimator artifact loaded")
	return m, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, loadError(source, "missing artifact", errors.New("empty source"))
	}

	if storage.IsS3URI(source) {
		if l.store == nil {
			return nil, loadError(source, "unreadable artifact", errors.New("no artifact store configured"))
		}
		bucket, key, err := storage.ParseS3URI(source)
		if err != nil {
			return nil, loadError(source, "missing artifact", err)
		}
		data, err := l.store.Fetch(ctx, bucket, key)
		if err != nil {
			return nil, loadError(source, "unreadable artifact", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, loadError(source, "missing artifact", err)
	}
	if err != nil {
		return nil, loadError(source, "unreadable artifact", err)
	}
	return data, nil
}
