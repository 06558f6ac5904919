package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Artifact keys within a store. The registry key is shared by every run;
// per-ontology keys derive from the ontology identifier.
const RegistryKey = "ontology_registry.json"

// TableKey names an ontology's metadata table artifact.
func TableKey(ont string) string {
	return ont + "_ontology_hierarchy_information.csv"
}

// AncestorsKey names an ontology's ancestor closure artifact.
func AncestorsKey(ont string) string {
	return ont + "_ontology_ancestors.json"
}

// ChildrenKey names an ontology's descendant closure artifact.
func ChildrenKey(ont string) string {
	return ont + "_ontology_children.json"
}

// ArtifactSet points at the three artifacts produced for one ontology.
type ArtifactSet struct {
	Table     string `json:"table"`
	Ancestors string `json:"ancestors"`
	Children  string `json:"children"`
}

// Registry records which ontologies a run processed and where their
// artifacts live. An ontology appears only once all of its artifacts are
// stored.
type Registry struct {
	RunID      string                 `json:"run_id"`
	StartedAt  time.Time              `json:"started_at"`
	Ontologies map[string]ArtifactSet `json:"ontologies"`
}

// NewRegistry returns an empty registry stamped with a fresh run ID.
func NewRegistry() *Registry {
	return &Registry{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Ontologies: make(map[string]ArtifactSet),
	}
}

// Register records an ontology's artifact locations.
func (r *Registry) Register(ont string, artifacts ArtifactSet) {
	r.Ontologies[ont] = artifacts
}

// Remove drops an ontology from the registry.
func (r *Registry) Remove(ont string) {
	delete(r.Ontologies, ont)
}

// Lookup returns the artifact locations registered for ont.
func (r *Registry) Lookup(ont string) (ArtifactSet, bool) {
	artifacts, ok := r.Ontologies[ont]
	return artifacts, ok
}

// IDs returns the registered ontology identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Ontologies))
	for ont := range r.Ontologies {
		ids = append(ids, ont)
	}
	sort.Strings(ids)
	return ids
}

// Marshal renders the registry as indented JSON.
func (r *Registry) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding registry: %w", err)
	}
	return data, nil
}

// ParseRegistry parses a registry previously rendered by Marshal.
func ParseRegistry(data []byte) (*Registry, error) {
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	if r.Ontologies == nil {
		r.Ontologies = make(map[string]ArtifactSet)
	}
	return &r, nil
}
