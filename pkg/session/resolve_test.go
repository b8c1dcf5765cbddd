package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/settings"
)

// resolveSettings builds a snapshot with two credentialed models: m1 on the
// openai preset (inherits the default URL) and m2 on deepseek with a base
// URL override.
func resolveSettings(t *testing.T) settings.Settings {
	t.Helper()

	st := settings.Default()
	require.NoError(t, st.AddModel("openai", settings.ModelConfig{
		ID:        "m1",
		ModelName: "gpt-4o-mini",
		APIKey:    "key-main",
	}))
	require.NoError(t, st.AddModel("deepseek", settings.ModelConfig{
		ID:                "m2",
		ModelName:         "deepseek-chat",
		APIKey:            "key-term",
		BaseURL:           "https://alt.example/v1",
		NoSendTemperature: true,
	}))
	require.NoError(t, st.Select("m1"))
	return st
}

func TestBuildJobTranslatorParams(t *testing.T) {
	st := resolveSettings(t)
	st.Translation = settings.TranslationSettings{
		LangIn:              "en",
		LangOut:             "zh",
		QPS:                 7,
		MinTextLength:       3,
		AutoExtractGlossary: true,
	}

	job, err := buildJob(st, engine.File{Name: "a.pdf", Path: "/tmp/a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "a.pdf", job.Input.Name)
	assert.Equal(t, "en", job.LangIn)
	assert.Equal(t, "zh", job.LangOut)
	assert.Equal(t, 7, job.QPS)

	assert.Equal(t, "gpt-4o-mini", job.Translator.Model)
	assert.Equal(t, "key-main", job.Translator.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", job.Translator.BaseURL)
	assert.True(t, job.Translator.SendTemperature)
}

func TestBuildJobForwardsWorkerPoolsAndRenderThresholds(t *testing.T) {
	st := resolveSettings(t)
	st.Translation.PoolMaxWorkers = 8
	st.Translation.TermPoolMaxWorkers = 2
	st.Translation.DisableSameTextFallback = true
	st.Translation.AddFormulaPlaceholdHint = true
	st.PDF.NonFormulaLineIOUThreshold = 0.85
	st.PDF.FigureTableProtectionThreshold = 0.95

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 8, job.PoolMaxWorkers)
	assert.Equal(t, 2, job.TermPoolMaxWorkers)
	assert.True(t, job.DisableSameTextFallback)
	assert.True(t, job.AddFormulaPlaceholdHint)
	assert.InDelta(t, 0.85, job.Compat.NonFormulaLineIOUThreshold, 0.0001)
	assert.InDelta(t, 0.95, job.Compat.FigureTableProtectionThreshold, 0.0001)
}

func TestBuildJobNoSelection(t *testing.T) {
	st := settings.Default()

	_, err := buildJob(st, engine.File{Name: "a.pdf"})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBuildJobSuppressedTemperature(t *testing.T) {
	st := resolveSettings(t)
	require.NoError(t, st.Select("m2"))

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.False(t, job.Translator.SendTemperature)
	assert.Equal(t, "https://alt.example/v1", job.Translator.BaseURL)
}

func TestTermParamsDeferToTranslator(t *testing.T) {
	st := resolveSettings(t)
	st.TermExtraction = settings.TermExtractionSettings{Reasoning: "low"}

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, job.Translator.Model, job.TermExtractor.Model)
	assert.Equal(t, job.Translator.APIKey, job.TermExtractor.APIKey)
	assert.Equal(t, "low", job.TermExtractor.Reasoning)
}

func TestTermParamsByModelID(t *testing.T) {
	st := resolveSettings(t)
	st.TermExtraction = settings.TermExtractionSettings{
		UseSeparateConfig: true,
		ModelConfigID:     "m2",
	}

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", job.TermExtractor.Model)
	assert.Equal(t, "key-term", job.TermExtractor.APIKey)
	assert.Equal(t, "https://alt.example/v1", job.TermExtractor.BaseURL)
	assert.False(t, job.TermExtractor.SendTemperature)
}

func TestTermParamsDanglingModelID(t *testing.T) {
	st := resolveSettings(t)
	st.TermExtraction = settings.TermExtractionSettings{
		UseSeparateConfig: true,
		ModelConfigID:     "gone",
	}

	_, err := buildJob(st, engine.File{Name: "a.pdf"})
	assert.ErrorIs(t, err, settings.ErrNotFound)
}

func TestTermParamsCustomOverrideFallsBackToMain(t *testing.T) {
	st := resolveSettings(t)
	st.TermExtraction = settings.TermExtractionSettings{
		UseSeparateConfig: true,
		CustomModel:       "glm-4-flash",
	}

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "glm-4-flash", job.TermExtractor.Model)
	// Credential and URL were left empty and inherit the main model's.
	assert.Equal(t, "key-main", job.TermExtractor.APIKey)
	assert.Equal(t, job.Translator.BaseURL, job.TermExtractor.BaseURL)
}

func TestBuildJobOutputAndCompat(t *testing.T) {
	st := resolveSettings(t)
	st.PDF.OutputDual = true
	st.PDF.OutputMono = false
	st.PDF.WatermarkMode = settings.WatermarkModeNone
	st.PDF.EnhanceCompatibility = true
	st.PDF.MaxPagesPerPart = 50
	st.Paths = settings.PathSettings{OutputDir: "/out", WorkingDir: "/work"}
	st.RPC.DocLayoutHost = "http://doclayout:8626"

	job, err := buildJob(st, engine.File{Name: "a.pdf"})
	require.NoError(t, err)

	assert.True(t, job.Output.Dual)
	assert.False(t, job.Output.Mono)
	assert.Equal(t, settings.WatermarkModeNone, job.Output.WatermarkMode)
	assert.Equal(t, "/out", job.Output.OutputDir)
	assert.True(t, job.Compat.EnhanceCompatibility)
	assert.Equal(t, 50, job.Compat.MaxPagesPerPart)
	assert.Equal(t, "http://doclayout:8626", job.DocLayoutHost)
}

func TestSplitGlossaryFiles(t *testing.T) {
	assert.Nil(t, splitGlossaryFiles(""))
	assert.Equal(t, []string{"a.csv"}, splitGlossaryFiles("a.csv"))
	assert.Equal(t, []string{"a.csv", "b.csv"}, splitGlossaryFiles(" a.csv , b.csv ,"))
}
