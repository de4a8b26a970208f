package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"iclvault/pkg/errors"
)

// Fixed artifact file names. A subdirectory of the registry root becomes
// a candidate only if all five exist.
const (
	ManifestFile    = "manifest.json"
	LensModelFile   = "lens_model.onnx"
	LensScalerFile  = "lens_scaler.json"
	VaultModelFile  = "vault_model.onnx"
	VaultScalerFile = "vault_scaler.json"
)

const manifestSchemaVersion = 1

// Manifest is the validated per-artifact descriptor. It is the source of
// truth for what an artifact contains; directory scanning only locates
// manifests.
type Manifest struct {
	Schema        int      `json:"schema"`
	Tag           string   `json:"tag"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	VaultMarginUm float64  `json:"vault_margin_um"`
}

// ReadManifest loads and validates the manifest in an artifact directory.
func ReadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(errors.ErrManifestInvalid, err.Error())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest invariants at load time.
func (m *Manifest) Validate() error {
	if m.Schema != manifestSchemaVersion {
		return errors.Wrapf(errors.ErrManifestInvalid, "unsupported schema version %d", m.Schema)
	}
	if m.Tag == "" {
		return errors.Wrap(errors.ErrManifestInvalid, "missing version tag")
	}
	if len(m.Features) == 0 {
		return errors.Wrap(errors.ErrManifestInvalid, "empty feature list")
	}
	seen := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		if f == "" {
			return errors.Wrap(errors.ErrManifestInvalid, "empty feature name")
		}
		if _, dup := seen[f]; dup {
			return errors.Wrapf(errors.ErrManifestInvalid, "duplicate feature %q", f)
		}
		seen[f] = struct{}{}
	}
	if m.VaultMarginUm <= 0 {
		return errors.Wrapf(errors.ErrManifestInvalid, "vault margin must be positive, got %v", m.VaultMarginUm)
	}
	return nil
}

// requiredFiles are the five files every artifact directory must carry.
var requiredFiles = []string{
	ManifestFile,
	LensModelFile,
	LensScalerFile,
	VaultModelFile,
	VaultScalerFile,
}

// hasRequiredFiles reports whether dir contains all five artifact files.
func hasRequiredFiles(dir string) bool {
	for _, name := range requiredFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
