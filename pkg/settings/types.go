package settings

// ModelConfig is one credentialed endpoint configuration. It belongs to
// exactly one Provider. The ID is opaque, globally unique, and immutable
// after creation.
type ModelConfig struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"display_name"`
	ModelName           string `json:"model_name"`
	APIKey              string `json:"api_key"`  //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL             string `json:"base_url"` // Empty means inherit the provider's default.
	EnableJSONMode      bool   `json:"enable_json_mode"`
	SendDashScopeHeader bool   `json:"send_dashscope_header"`
	NoSendTemperature   bool   `json:"no_send_temperature"`
}

// Provider is a named endpoint family with an ordered list of model
// configurations. Built-in providers have fixed well-known ids and cannot be
// deleted; user-created providers get generated ids with a "custom-" prefix.
// Model order is insertion order and only matters for display.
type Provider struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	DefaultBaseURL string        `json:"default_base_url"`
	Builtin        bool          `json:"is_builtin"`
	Icon           string        `json:"icon"`
	Models         []ModelConfig `json:"models"`
}

// TermExtractionSettings controls which model configuration drives glossary
// term extraction. When UseSeparateConfig is false the registry's selected
// model is used. Otherwise either ModelConfigID names an existing model, or
// the Custom* fields supply an ad-hoc override not backed by any stored
// ModelConfig; custom fields left empty fall back to the main model's values.
type TermExtractionSettings struct {
	UseSeparateConfig bool   `json:"use_separate_config"`
	ModelConfigID     string `json:"model_config_id"`
	CustomAPIKey      string `json:"custom_api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	CustomBaseURL     string `json:"custom_base_url"`
	CustomModel       string `json:"custom_model"`
	Reasoning         string `json:"reasoning"`
}

// TranslationSettings groups translation behaviour options.
type TranslationSettings struct {
	LangIn                  string `json:"lang_in"`
	LangOut                 string `json:"lang_out"`
	QPS                     int    `json:"qps"`
	MinTextLength           int    `json:"min_text_length"`
	PoolMaxWorkers          int    `json:"pool_max_workers"`      // 0 = auto.
	TermPoolMaxWorkers      int    `json:"term_pool_max_workers"` // 0 = auto.
	CustomSystemPrompt      string `json:"custom_system_prompt"`
	AutoExtractGlossary     bool   `json:"auto_extract_glossary"`
	DisableSameTextFallback bool   `json:"disable_same_text_fallback"`
	AddFormulaPlaceholdHint bool   `json:"add_formula_placehold_hint"`
}

// Watermark output modes.
const (
	WatermarkModeWatermarked = "watermarked"
	WatermarkModeNone        = "no_watermark"
	WatermarkModeBoth        = "both"
)

// PDFSettings groups document-output and compatibility options.
type PDFSettings struct {
	OutputDual                     bool    `json:"output_dual"`
	OutputMono                     bool    `json:"output_mono"`
	WatermarkMode                  string  `json:"watermark_mode"`
	SkipClean                      bool    `json:"skip_clean"`
	DualTranslateFirst             bool    `json:"dual_translate_first"`
	DisableRichTextTranslate       bool    `json:"disable_rich_text_translate"`
	EnhanceCompatibility           bool    `json:"enhance_compatibility"`
	UseAlternatingPagesDual        bool    `json:"use_alternating_pages_dual"`
	MaxPagesPerPart                int     `json:"max_pages_per_part"` // 0 = do not split.
	SkipScannedDetection           bool    `json:"skip_scanned_detection"`
	OCRWorkaround                  bool    `json:"ocr_workaround"`
	AutoEnableOCRWorkaround        bool    `json:"auto_enable_ocr_workaround"`
	SplitShortLines                bool    `json:"split_short_lines"`
	ShortLineSplitFactor           float64 `json:"short_line_split_factor"`
	PrimaryFontFamily              string  `json:"primary_font_family"` // "", "serif", "sans-serif", "script".
	FormularFontPattern            string  `json:"formular_font_pattern"`
	FormularCharPattern            string  `json:"formular_char_pattern"`
	SkipFormRender                 bool    `json:"skip_form_render"`
	SkipCurveRender                bool    `json:"skip_curve_render"`
	OnlyParseGeneratePDF           bool    `json:"only_parse_generate_pdf"`
	RemoveNonFormulaLines          bool    `json:"remove_non_formula_lines"`
	NonFormulaLineIOUThreshold     float64 `json:"non_formula_line_iou_threshold"`
	FigureTableProtectionThreshold float64 `json:"figure_table_protection_threshold"`
}

// RPCSettings holds addresses of auxiliary services.
type RPCSettings struct {
	DocLayoutHost string `json:"doclayout_host"`
}

// PathSettings groups filesystem locations.
type PathSettings struct {
	OutputDir     string `json:"output_dir"`     // Empty = current directory.
	WorkingDir    string `json:"working_dir"`    // Empty = temp directory.
	GlossaryFiles string `json:"glossary_files"` // Comma-separated CSV paths.
}

// Settings is the complete persisted configuration document. It is treated as
// a single versioned aggregate: every mutating Store call rewrites the whole
// file. The embedded Registry contributes the top-level "providers" and
// "selected_model_id" keys.
type Settings struct {
	Registry
	TermExtraction TermExtractionSettings `json:"term_extraction"`
	Translation    TranslationSettings    `json:"translation"`
	PDF            PDFSettings            `json:"pdf"`
	RPC            RPCSettings            `json:"rpc"`
	Paths          PathSettings           `json:"paths"`
}
