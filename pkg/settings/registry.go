package settings

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by registry operations when the named provider or
// model does not exist. No partial mutation occurs.
var ErrNotFound = errors.New("settings: not found")

// Registry is the root provider/model aggregate. Provider ids are unique
// across the list. SelectedModelID is a weak reference: when non-empty it
// must name a model that exists somewhere in the registry, and every deletion
// path keeps that invariant by clearing the selection when the referenced
// model (or its owning provider) goes away.
type Registry struct {
	Providers       []Provider `json:"providers"`
	SelectedModelID string     `json:"selected_model_id"`
}

// Provider returns the provider with the given id.
func (r *Registry) Provider(id string) (*Provider, bool) {
	for i := range r.Providers {
		if r.Providers[i].ID == id {
			return &r.Providers[i], true
		}
	}
	return nil, false
}

// Model returns the model with the given id, wherever it lives.
func (r *Registry) Model(id string) (*ModelConfig, bool) {
	for i := range r.Providers {
		for j := range r.Providers[i].Models {
			if r.Providers[i].Models[j].ID == id {
				return &r.Providers[i].Models[j], true
			}
		}
	}
	return nil, false
}

// OwnerOf returns the provider that owns the model with the given id.
func (r *Registry) OwnerOf(modelID string) (*Provider, bool) {
	for i := range r.Providers {
		for j := range r.Providers[i].Models {
			if r.Providers[i].Models[j].ID == modelID {
				return &r.Providers[i], true
			}
		}
	}
	return nil, false
}

// SelectedModel returns the currently selected model, or false when nothing
// is selected.
func (r *Registry) SelectedModel() (*ModelConfig, bool) {
	if r.SelectedModelID == "" {
		return nil, false
	}
	return r.Model(r.SelectedModelID)
}

// EffectiveBaseURL resolves the base URL a model actually uses: its own
// override when set, otherwise the owning provider's default. If the owning
// provider cannot be found the documented fallback is returned.
func (r *Registry) EffectiveBaseURL(m *ModelConfig) string {
	if m.BaseURL != "" {
		return m.BaseURL
	}
	if p, ok := r.OwnerOf(m.ID); ok {
		return p.DefaultBaseURL
	}
	return FallbackBaseURL
}

// AddProvider appends a provider. The caller is responsible for generating a
// non-colliding id; a duplicate id is rejected rather than deduplicated.
func (r *Registry) AddProvider(p Provider) error {
	if p.ID == "" {
		return fmt.Errorf("settings: add provider: id is required")
	}
	if _, ok := r.Provider(p.ID); ok {
		return fmt.Errorf("settings: add provider: duplicate id %q", p.ID)
	}

	r.Providers = append(r.Providers, p)
	return nil
}

// UpdateProvider replaces the name, default base URL, and icon of an existing
// provider. Identity fields (id, is_builtin) are never altered.
func (r *Registry) UpdateProvider(id, name, defaultBaseURL, icon string) error {
	p, ok := r.Provider(id)
	if !ok {
		return ErrNotFound
	}

	p.Name = name
	p.DefaultBaseURL = defaultBaseURL
	p.Icon = icon
	return nil
}

// RemoveProvider deletes a provider and every model it owns. Built-in
// providers cannot be deleted. If the selection pointed at one of the removed
// models it is cleared.
func (r *Registry) RemoveProvider(id string) error {
	for i := range r.Providers {
		if r.Providers[i].ID != id {
			continue
		}
		if r.Providers[i].Builtin {
			return fmt.Errorf("settings: provider %q is built-in and cannot be removed", id)
		}

		for _, m := range r.Providers[i].Models {
			if m.ID == r.SelectedModelID {
				r.SelectedModelID = ""
			}
		}

		r.Providers = append(r.Providers[:i], r.Providers[i+1:]...)
		return nil
	}
	return ErrNotFound
}

// AddModel appends a model to the provider with the given id. The caller
// generates the model id; duplicates across the whole registry are rejected.
func (r *Registry) AddModel(providerID string, m ModelConfig) error {
	if m.ID == "" {
		return fmt.Errorf("settings: add model: id is required")
	}
	if _, ok := r.Model(m.ID); ok {
		return fmt.Errorf("settings: add model: duplicate id %q", m.ID)
	}

	p, ok := r.Provider(providerID)
	if !ok {
		return ErrNotFound
	}

	p.Models = append(p.Models, m)
	return nil
}

// UpdateModel replaces the mutable fields of an existing model. The id (and
// the owning provider) never change.
func (r *Registry) UpdateModel(id string, upd ModelConfig) error {
	m, ok := r.Model(id)
	if !ok {
		return ErrNotFound
	}

	m.DisplayName = upd.DisplayName
	m.ModelName = upd.ModelName
	m.APIKey = upd.APIKey
	m.BaseURL = upd.BaseURL
	m.EnableJSONMode = upd.EnableJSONMode
	m.SendDashScopeHeader = upd.SendDashScopeHeader
	m.NoSendTemperature = upd.NoSendTemperature
	return nil
}

// RemoveModel deletes the model with the given id from its owning provider,
// clearing the selection if it matched.
func (r *Registry) RemoveModel(id string) error {
	for i := range r.Providers {
		models := r.Providers[i].Models
		for j := range models {
			if models[j].ID != id {
				continue
			}

			r.Providers[i].Models = append(models[:j], models[j+1:]...)
			if r.SelectedModelID == id {
				r.SelectedModelID = ""
			}
			return nil
		}
	}
	return ErrNotFound
}

// Select marks the model with the given id as the active one. An empty id
// clears the selection. Unknown ids are rejected; the weak reference is
// validated here so the selection invariant cannot be broken at its single
// write point.
func (r *Registry) Select(modelID string) error {
	if modelID == "" {
		r.SelectedModelID = ""
		return nil
	}
	if _, ok := r.Model(modelID); !ok {
		return ErrNotFound
	}

	r.SelectedModelID = modelID
	return nil
}
