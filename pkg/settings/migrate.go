package settings

import "encoding/json"

// legacyOpenAI is the flat credential block of the schema that predates the
// provider registry.
type legacyOpenAI struct {
	APIKey                  string `json:"api_key"`
	BaseURL                 string `json:"base_url"`
	Model                   string `json:"model"`
	TermExtractionModel     string `json:"term_extraction_model"`
	TermExtractionBaseURL   string `json:"term_extraction_base_url"`
	TermExtractionAPIKey    string `json:"term_extraction_api_key"`
	Reasoning               string `json:"reasoning"`
	TermExtractionReasoning string `json:"term_extraction_reasoning"`
	EnableJSONMode          bool   `json:"enable_json_mode"`
	SendDashScopeHeader     bool   `json:"send_dashscope_header"`
	NoSendTemperature       bool   `json:"no_send_temperature"`
}

// legacySettings is the pre-registry document shape: a single flat openai
// block and no providers key. The flat option groups are structurally
// identical to the current ones and carry over unchanged.
type legacySettings struct {
	OpenAI      legacyOpenAI        `json:"openai"`
	Translation TranslationSettings `json:"translation"`
	PDF         PDFSettings         `json:"pdf"`
	RPC         RPCSettings         `json:"rpc"`
	Paths       PathSettings        `json:"paths"`
}

// isLegacyDocument reports whether raw is a legacy flat document: it has an
// "openai" credential block and no "providers" registry. Key presence is the
// only migration trigger.
func isLegacyDocument(raw []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}

	_, hasOpenAI := probe["openai"]
	_, hasProviders := probe["providers"]
	return hasOpenAI && !hasProviders
}

// migrate converts a legacy flat document to the current registry shape. It
// is pure and deterministic: the same legacy input always produces the same
// aggregate apart from the generated model id.
//
// The legacy base URL picks the built-in preset whose default matches it;
// when none matches the first preset is the target. A legacy API key
// synthesizes one selected model under that provider, with a base URL
// override only when the legacy URL differs from the preset default (so
// future default changes still propagate). Without an API key the provider
// stays empty and nothing is selected.
func migrate(old legacySettings) Settings {
	s := Settings{
		Registry:    Registry{Providers: BuiltinProviders()},
		Translation: old.Translation,
		PDF:         old.PDF,
		RPC:         old.RPC,
		Paths:       old.Paths,
	}

	target := &s.Providers[0]
	for i := range s.Providers {
		if s.Providers[i].DefaultBaseURL == old.OpenAI.BaseURL {
			target = &s.Providers[i]
			break
		}
	}

	if old.OpenAI.APIKey != "" {
		m := ModelConfig{
			ID:                  NewModelID(),
			DisplayName:         old.OpenAI.Model,
			ModelName:           old.OpenAI.Model,
			APIKey:              old.OpenAI.APIKey,
			EnableJSONMode:      old.OpenAI.EnableJSONMode,
			SendDashScopeHeader: old.OpenAI.SendDashScopeHeader,
			NoSendTemperature:   old.OpenAI.NoSendTemperature,
		}
		if old.OpenAI.BaseURL != "" && old.OpenAI.BaseURL != target.DefaultBaseURL {
			m.BaseURL = old.OpenAI.BaseURL
		}

		target.Models = append(target.Models, m)
		s.SelectedModelID = m.ID
	}

	s.TermExtraction = TermExtractionSettings{
		UseSeparateConfig: old.OpenAI.TermExtractionModel != "" ||
			old.OpenAI.TermExtractionBaseURL != "" ||
			old.OpenAI.TermExtractionAPIKey != "",
		CustomAPIKey:  old.OpenAI.TermExtractionAPIKey,
		CustomBaseURL: old.OpenAI.TermExtractionBaseURL,
		CustomModel:   old.OpenAI.TermExtractionModel,
		Reasoning:     old.OpenAI.TermExtractionReasoning,
	}

	return s
}
