package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"iclvault/internal/features"
	"iclvault/internal/ml"
	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

// Loader builds an Artifact from a qualifying directory and its
// validated manifest. Injectable so tests can register fakes without
// ONNX runtime.
type Loader func(dir string, m *Manifest) (*Artifact, error)

// Registry maps version tags to immutable model artifacts. It is
// append-only and populated exactly once; picking up artifacts added
// after the first scan requires a fresh process.
type Registry struct {
	root   string
	loader Loader
	log    *logger.Logger

	once      sync.Once
	artifacts map[string]*Artifact
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader replaces the default ONNX-backed artifact loader.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// New creates a registry rooted at dir. The scan is lazy: the first
// call to Get, All, Tags or Len triggers it, guarded so concurrent
// first requests do not double-scan.
func New(root string, log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		root:   root,
		loader: loadONNXArtifact,
		log:    log.With("component", "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// scan walks the immediate children of the root. A subdirectory is
// registered only if it carries all five artifact files and loads
// cleanly; corrupt candidates are logged and skipped so a partial
// registry still serves.
func (r *Registry) scan() {
	r.artifacts = make(map[string]*Artifact)

	entries, err := os.ReadDir(r.root)
	if err != nil {
		r.log.Warnf("Registry root %s not readable: %v", r.root, err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(r.root, entry.Name())

		if !hasRequiredFiles(dir) {
			r.log.Debugf("Skipping %s: missing required artifact files", entry.Name())
			continue
		}

		manifest, err := ReadManifest(dir)
		if err != nil {
			r.log.Warnf("Skipping artifact %s: %v", entry.Name(), err)
			continue
		}

		if _, dup := r.artifacts[manifest.Tag]; dup {
			r.log.Warnf("Skipping artifact %s: duplicate tag %q", entry.Name(), manifest.Tag)
			continue
		}

		artifact, err := r.loader(dir, manifest)
		if err != nil {
			r.log.Warnf("Skipping artifact %s: %v", entry.Name(), errors.Wrap(errors.ErrArtifactCorrupt, err.Error()))
			continue
		}

		r.artifacts[manifest.Tag] = artifact
		r.log.Infof("Registered artifact %s (%d features)", manifest.Tag, artifact.FeatureCount())
	}

	r.log.Infof("Registry populated: %d artifact(s) from %s", len(r.artifacts), r.root)
}

func (r *Registry) ensure() {
	r.once.Do(r.scan)
}

// Get returns the artifact registered under tag.
func (r *Registry) Get(tag string) (*Artifact, error) {
	r.ensure()
	artifact, ok := r.artifacts[tag]
	if !ok {
		return nil, errors.Wrapf(errors.ErrArtifactNotFound, "tag %q", tag)
	}
	return artifact, nil
}

// All returns a copy of the tag → artifact mapping.
func (r *Registry) All() map[string]*Artifact {
	r.ensure()
	out := make(map[string]*Artifact, len(r.artifacts))
	for tag, a := range r.artifacts {
		out[tag] = a
	}
	return out
}

// Tags returns the registered version tags in sorted order.
func (r *Registry) Tags() []string {
	r.ensure()
	tags := make([]string, 0, len(r.artifacts))
	for tag := range r.artifacts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered artifacts.
func (r *Registry) Len() int {
	r.ensure()
	return len(r.artifacts)
}

// loadONNXArtifact is the production loader: ONNX sessions for both
// models plus their fitted scalers.
func loadONNXArtifact(dir string, m *Manifest) (*Artifact, error) {
	classifier, err := ml.LoadClassifier(filepath.Join(dir, LensModelFile), len(features.LensSizes))
	if err != nil {
		return nil, errors.Wrap(err, "lens classifier")
	}

	classifierScaler, err := ml.LoadScaler(filepath.Join(dir, LensScalerFile))
	if err != nil {
		classifier.Destroy()
		return nil, errors.Wrap(err, "lens scaler")
	}

	regressor, err := ml.LoadRegressor(filepath.Join(dir, VaultModelFile))
	if err != nil {
		classifier.Destroy()
		return nil, errors.Wrap(err, "vault regressor")
	}

	regressorScaler, err := ml.LoadScaler(filepath.Join(dir, VaultScalerFile))
	if err != nil {
		classifier.Destroy()
		regressor.Destroy()
		return nil, errors.Wrap(err, "vault scaler")
	}

	return &Artifact{
		Tag:              m.Tag,
		Description:      m.Description,
		Features:         m.Features,
		VaultMargin:      m.VaultMarginUm,
		Classifier:       classifier,
		ClassifierScaler: classifierScaler,
		Regressor:        regressor,
		RegressorScaler:  regressorScaler,
	}, nil
}
