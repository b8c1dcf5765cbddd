package engine

// ModelParams are the concrete LLM parameters a job runs with, fully resolved
// from the configuration store: no ids, no inheritance left to apply.
type ModelParams struct {
	Model               string `json:"model"`
	APIKey              string `json:"api_key"` //nolint:gosec // resolved configuration, not a hardcoded secret
	BaseURL             string `json:"base_url"`
	EnableJSONMode      bool   `json:"enable_json_mode"`
	SendDashScopeHeader bool   `json:"send_dashscope_header"`
	SendTemperature     bool   `json:"send_temperature"`
	Reasoning           string `json:"reasoning,omitempty"`
}

// File is one input document already materialized on local storage.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// OutputOptions control which PDFs a job produces and where they land.
type OutputOptions struct {
	Dual          bool   `json:"dual"`
	Mono          bool   `json:"mono"`
	WatermarkMode string `json:"watermark_mode"`
	OutputDir     string `json:"output_dir,omitempty"`
	WorkingDir    string `json:"working_dir,omitempty"`
}

// CompatOptions mirror the document-processing switches of the engine.
type CompatOptions struct {
	SkipClean                      bool    `json:"skip_clean"`
	DualTranslateFirst             bool    `json:"dual_translate_first"`
	DisableRichTextTranslate       bool    `json:"disable_rich_text_translate"`
	EnhanceCompatibility           bool    `json:"enhance_compatibility"`
	UseAlternatingPagesDual        bool    `json:"use_alternating_pages_dual"`
	MaxPagesPerPart                int     `json:"max_pages_per_part,omitempty"`
	SkipScannedDetection           bool    `json:"skip_scanned_detection"`
	OCRWorkaround                  bool    `json:"ocr_workaround"`
	AutoEnableOCRWorkaround        bool    `json:"auto_enable_ocr_workaround"`
	SplitShortLines                bool    `json:"split_short_lines"`
	ShortLineSplitFactor           float64 `json:"short_line_split_factor,omitempty"`
	PrimaryFontFamily              string  `json:"primary_font_family,omitempty"`
	FormularFontPattern            string  `json:"formular_font_pattern,omitempty"`
	FormularCharPattern            string  `json:"formular_char_pattern,omitempty"`
	SkipFormRender                 bool    `json:"skip_form_render"`
	SkipCurveRender                bool    `json:"skip_curve_render"`
	RemoveNonFormulaLines          bool    `json:"remove_non_formula_lines"`
	NonFormulaLineIOUThreshold     float64 `json:"non_formula_line_iou_threshold,omitempty"`
	FigureTableProtectionThreshold float64 `json:"figure_table_protection_threshold,omitempty"`
}

// Job is one translation request for one input file.
type Job struct {
	Input                   File          `json:"input"`
	Pages                   string        `json:"pages,omitempty"` // e.g. "1,2,1-,-3,3-5"; empty = all.
	LangIn                  string        `json:"lang_in"`
	LangOut                 string        `json:"lang_out"`
	Translator              ModelParams   `json:"translator"`
	TermExtractor           ModelParams   `json:"term_extractor"`
	QPS                     int           `json:"qps,omitempty"`
	MinTextLength           int           `json:"min_text_length,omitempty"`
	PoolMaxWorkers          int           `json:"pool_max_workers,omitempty"`      // 0 = engine default.
	TermPoolMaxWorkers      int           `json:"term_pool_max_workers,omitempty"` // 0 = engine default.
	CustomSystemPrompt      string        `json:"custom_system_prompt,omitempty"`
	AutoExtractGlossary     bool          `json:"auto_extract_glossary"`
	DisableSameTextFallback bool          `json:"disable_same_text_fallback"`
	AddFormulaPlaceholdHint bool          `json:"add_formula_placehold_hint"`
	GlossaryFiles           []string      `json:"glossary_files,omitempty"`
	Output                  OutputOptions `json:"output"`
	Compat                  CompatOptions `json:"compat"`
	DocLayoutHost           string        `json:"doclayout_host,omitempty"`
}
