package session

import (
	"fmt"
	"strings"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/settings"
)

// buildJob resolves a settings snapshot and one queued file into the concrete
// parameters the engine requires. It reads configuration only; nothing is
// written back to the store.
func buildJob(st settings.Settings, f engine.File) (engine.Job, error) {
	m, ok := st.SelectedModel()
	if !ok {
		return engine.Job{}, errNoModelSelected
	}

	translator := modelParams(&st, m)

	extractor, err := termParams(&st, translator)
	if err != nil {
		return engine.Job{}, err
	}

	return engine.Job{
		Input:                   f,
		LangIn:                  st.Translation.LangIn,
		LangOut:                 st.Translation.LangOut,
		Translator:              translator,
		TermExtractor:           extractor,
		QPS:                     st.Translation.QPS,
		MinTextLength:           st.Translation.MinTextLength,
		PoolMaxWorkers:          st.Translation.PoolMaxWorkers,
		TermPoolMaxWorkers:      st.Translation.TermPoolMaxWorkers,
		CustomSystemPrompt:      st.Translation.CustomSystemPrompt,
		AutoExtractGlossary:     st.Translation.AutoExtractGlossary,
		DisableSameTextFallback: st.Translation.DisableSameTextFallback,
		AddFormulaPlaceholdHint: st.Translation.AddFormulaPlaceholdHint,
		GlossaryFiles:           splitGlossaryFiles(st.Paths.GlossaryFiles),
		Output: engine.OutputOptions{
			Dual:          st.PDF.OutputDual,
			Mono:          st.PDF.OutputMono,
			WatermarkMode: st.PDF.WatermarkMode,
			OutputDir:     st.Paths.OutputDir,
			WorkingDir:    st.Paths.WorkingDir,
		},
		Compat:        compatOptions(st.PDF),
		DocLayoutHost: st.RPC.DocLayoutHost,
	}, nil
}

// modelParams flattens a stored model configuration: the base URL inheritance
// chain is resolved here so the engine never sees ids.
func modelParams(st *settings.Settings, m *settings.ModelConfig) engine.ModelParams {
	return engine.ModelParams{
		Model:               m.ModelName,
		APIKey:              m.APIKey,
		BaseURL:             st.EffectiveBaseURL(m),
		EnableJSONMode:      m.EnableJSONMode,
		SendDashScopeHeader: m.SendDashScopeHeader,
		SendTemperature:     !m.NoSendTemperature,
	}
}

// termParams resolves the term-extraction model. With UseSeparateConfig off
// it defers to the main translator. Otherwise it either looks up a stored
// model by id (a dangling id is an error) or applies the ad-hoc custom
// override, where empty fields fall back to the main translator's values.
func termParams(st *settings.Settings, main engine.ModelParams) (engine.ModelParams, error) {
	te := st.TermExtraction

	p := main
	if te.UseSeparateConfig {
		switch {
		case te.ModelConfigID != "":
			m, ok := st.Model(te.ModelConfigID)
			if !ok {
				return engine.ModelParams{}, fmt.Errorf("session: term extraction model %q: %w", te.ModelConfigID, settings.ErrNotFound)
			}
			p = modelParams(st, m)
		default:
			if te.CustomModel != "" {
				p.Model = te.CustomModel
			}
			if te.CustomAPIKey != "" {
				p.APIKey = te.CustomAPIKey
			}
			if te.CustomBaseURL != "" {
				p.BaseURL = te.CustomBaseURL
			}
		}
	}
	p.Reasoning = te.Reasoning
	return p, nil
}

func compatOptions(p settings.PDFSettings) engine.CompatOptions {
	return engine.CompatOptions{
		SkipClean:                      p.SkipClean,
		DualTranslateFirst:             p.DualTranslateFirst,
		DisableRichTextTranslate:       p.DisableRichTextTranslate,
		EnhanceCompatibility:           p.EnhanceCompatibility,
		UseAlternatingPagesDual:        p.UseAlternatingPagesDual,
		MaxPagesPerPart:                p.MaxPagesPerPart,
		SkipScannedDetection:           p.SkipScannedDetection,
		OCRWorkaround:                  p.OCRWorkaround,
		AutoEnableOCRWorkaround:        p.AutoEnableOCRWorkaround,
		SplitShortLines:                p.SplitShortLines,
		ShortLineSplitFactor:           p.ShortLineSplitFactor,
		PrimaryFontFamily:              p.PrimaryFontFamily,
		FormularFontPattern:            p.FormularFontPattern,
		FormularCharPattern:            p.FormularCharPattern,
		SkipFormRender:                 p.SkipFormRender,
		SkipCurveRender:                p.SkipCurveRender,
		RemoveNonFormulaLines:          p.RemoveNonFormulaLines,
		NonFormulaLineIOUThreshold:     p.NonFormulaLineIOUThreshold,
		FigureTableProtectionThreshold: p.FigureTableProtectionThreshold,
	}
}

// splitGlossaryFiles parses the comma-separated glossary path list.
func splitGlossaryFiles(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
