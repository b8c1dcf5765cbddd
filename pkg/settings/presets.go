package settings

import "github.com/google/uuid"

// FallbackBaseURL is returned by EffectiveBaseURL when a model's owning
// provider cannot be found.
const FallbackBaseURL = "https://api.openai.com/v1"

// BuiltinProviders returns fresh copies of the built-in provider presets, in
// display order, each with zero models. The first preset is the migration
// target when no legacy base URL matches.
func BuiltinProviders() []Provider {
	return []Provider{
		{
			ID:             "openai",
			Name:           "OpenAI",
			DefaultBaseURL: "https://api.openai.com/v1",
			Builtin:        true,
			Icon:           "openai",
		},
		{
			ID:             "deepseek",
			Name:           "DeepSeek",
			DefaultBaseURL: "https://api.deepseek.com/v1",
			Builtin:        true,
			Icon:           "deepseek",
		},
		{
			ID:             "zhipu",
			Name:           "Zhipu",
			DefaultBaseURL: "https://open.bigmodel.cn/api/paas/v4",
			Builtin:        true,
			Icon:           "zhipu",
		},
		{
			ID:             "dashscope",
			Name:           "DashScope",
			DefaultBaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Builtin:        true,
			Icon:           "dashscope",
		},
	}
}

// Default returns the settings used when no document exists on disk or the
// existing one cannot be read: every built-in provider with no models and no
// selection.
func Default() Settings {
	return Settings{
		Registry: Registry{Providers: BuiltinProviders()},
		Translation: TranslationSettings{
			LangIn:              "en",
			LangOut:             "zh",
			QPS:                 4,
			MinTextLength:       5,
			AutoExtractGlossary: true,
		},
		PDF: PDFSettings{
			OutputDual:                     true,
			OutputMono:                     true,
			WatermarkMode:                  WatermarkModeWatermarked,
			ShortLineSplitFactor:           0.8,
			NonFormulaLineIOUThreshold:     0.9,
			FigureTableProtectionThreshold: 0.9,
		},
	}
}

// NewProviderID generates an id for a user-created provider. The "custom-"
// prefix distinguishes user providers from the fixed built-in ids.
func NewProviderID() string {
	return "custom-" + uuid.NewString()
}

// NewModelID generates a globally unique model configuration id.
func NewModelID() string {
	return "model-" + uuid.NewString()
}
