package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// SchemaVersion represents a version of a schema
type SchemaVersion struct {
	Version       int               `json:"version"`
	Schema        *Schema           `json:"schema"`
	CreatedAt     time.Time         `json:"created_at"`
	Fingerprint   string            `json:"fingerprint"`
	Compatibility CompatibilityMode `json:"compatibility"`
}

// Registry keeps the schema versions of subjects, usually record names,
// and refuses versions that break the compatibility mode of their subject.
type Registry struct {
	schemas       map[string][]*SchemaVersion // subject -> versions
	compatibility map[string]CompatibilityMode
	defaultMode   CompatibilityMode
	mu            sync.RWMutex
	logger        *zap.Logger

	// Hooks for schema changes
	onSchemaChange []func(subject string, old, new *SchemaVersion)
}

// NewRegistry creates an empty registry whose subjects default to mode.
func NewRegistry(logger *zap.Logger, mode CompatibilityMode) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = CompatibilityBackward
	}
	return &Registry{
		schemas:       make(map[string][]*SchemaVersion),
		compatibility: make(map[string]CompatibilityMode),
		defaultMode:   mode,
		logger:        logger,
	}
}

// Fingerprint returns the SHA-256 of the JSON form of s.
func Fingerprint(s *Schema) (string, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RegisterSchema registers s as the next version of subject. Registering
// a schema equal to an existing version returns that version.
func (r *Registry) RegisterSchema(ctx context.Context, subject string, s *Schema) (*SchemaVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "registration cancelled")
	}
	fingerprint, err := Fingerprint(s)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	mode := r.modeLocked(subject)
	versions := r.schemas[subject]
	for _, v := range versions {
		if v.Fingerprint == fingerprint {
			r.mu.Unlock()
			r.logger.Debug("schema already registered",
				zap.String("subject", subject),
				zap.Int("version", v.Version))
			return v, nil
		}
	}

	// Validate compatibility with previous versions
	against := versions
	if mode != CompatibilityBackwardTransitive && len(versions) > 0 {
		against = versions[len(versions)-1:]
	}
	for i := len(against) - 1; i >= 0; i-- {
		if err := CheckCompatibility(against[i].Schema, s, mode); err != nil {
			r.mu.Unlock()
			return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch,
				fmt.Sprintf("schema of %s incompatible with version %d under %s", subject, against[i].Version, mode)).
				WithDetail("subject", subject)
		}
	}

	version := &SchemaVersion{
		Version:       len(versions) + 1,
		Schema:        s,
		CreatedAt:     time.Now().UTC(),
		Fingerprint:   fingerprint,
		Compatibility: mode,
	}
	r.schemas[subject] = append(versions, version)
	hooks := slices.Clone(r.onSchemaChange)
	r.mu.Unlock()

	if len(versions) > 0 {
		previous := versions[len(versions)-1]
		for _, hook := range hooks {
			hook(subject, previous, version)
		}
	}

	r.logger.Info("schema registered",
		zap.String("subject", subject),
		zap.Int("version", version.Version),
		zap.String("fingerprint", version.Fingerprint))
	return version, nil
}

// GetSchema retrieves a specific schema version
func (r *Registry) GetSchema(subject string, version int) (*SchemaVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, exists := r.schemas[subject]
	if !exists || len(versions) == 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "subject %s not found", subject)
	}
	if version <= 0 || version > len(versions) {
		return nil, errors.Newf(errors.ErrorTypeConfig, "version %d not found for subject %s", version, subject)
	}
	return versions[version-1], nil
}

// GetLatestSchema retrieves the latest schema version
func (r *Registry) GetLatestSchema(subject string) (*SchemaVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.schemas[subject]
	if len(versions) == 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "subject %s not found", subject)
	}
	return versions[len(versions)-1], nil
}

// GetSchemaHistory returns all versions of a schema
func (r *Registry) GetSchemaHistory(subject string) ([]*SchemaVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, exists := r.schemas[subject]
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "subject %s not found", subject)
	}
	// Return a copy to prevent external modifications
	history := make([]*SchemaVersion, len(versions))
	copy(history, versions)
	return history, nil
}

// Subjects returns the registered subjects in order.
func (r *Registry) Subjects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]string, 0, len(r.schemas))
	for s := range r.schemas {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

// SetCompatibilityMode sets the compatibility mode for a subject
func (r *Registry) SetCompatibilityMode(subject string, mode CompatibilityMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.compatibility[subject] = mode
	r.logger.Info("compatibility mode set",
		zap.String("subject", subject),
		zap.String("mode", string(mode)))
}

// ModeOf returns the compatibility mode applied to subject.
func (r *Registry) ModeOf(subject string) CompatibilityMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modeLocked(subject)
}

func (r *Registry) modeLocked(subject string) CompatibilityMode {
	if mode, exists := r.compatibility[subject]; exists {
		return mode
	}
	return r.defaultMode
}

// Changes lists the changes between two versions of subject.
func (r *Registry) Changes(subject string, from, to int) ([]SchemaChange, error) {
	old, err := r.GetSchema(subject, from)
	if err != nil {
		return nil, err
	}
	new, err := r.GetSchema(subject, to)
	if err != nil {
		return nil, err
	}
	return Diff(old.Schema, new.Schema), nil
}

// OnSchemaChange registers a callback run after a subject gets a new
// version.
func (r *Registry) OnSchemaChange(callback func(subject string, old, new *SchemaVersion)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSchemaChange = append(r.onSchemaChange, callback)
}

type registryState struct {
	Schemas       map[string][]*SchemaVersion  `json:"schemas"`
	Compatibility map[string]CompatibilityMode `json:"compatibility"`
}

// Export exports the registry state
func (r *Registry) Export() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := json.MarshalIndent(registryState{Schemas: r.schemas, Compatibility: r.compatibility}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode registry")
	}
	return data, nil
}

// Import replaces the registry state with data produced by Export.
func (r *Registry) Import(data []byte) error {
	var state registryState
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to decode registry")
	}
	if state.Schemas == nil {
		state.Schemas = make(map[string][]*SchemaVersion)
	}
	if state.Compatibility == nil {
		state.Compatibility = make(map[string]CompatibilityMode)
	}
	for subject, versions := range state.Schemas {
		for i, v := range versions {
			if v == nil || v.Schema == nil || v.Version != i+1 {
				return errors.Newf(errors.ErrorTypeFile, "registry subject %s has an invalid version %d", subject, i+1)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = state.Schemas
	r.compatibility = state.Compatibility
	return nil
}
