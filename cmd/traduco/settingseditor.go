package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mireiacs/traduco/pkg/settings"
)

// runSettingsEditor is the entry point: open store → menu loop. Every
// section writes through the store, so each confirmed form is persisted
// immediately.
func runSettingsEditor(path string) error {
	store, err := settings.Open(path)
	if err != nil {
		return err
	}

	fmt.Printf("Editing %s\n", store.Path())

	for {
		var choice string

		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Traduco Settings").
				Options(
					huh.NewOption("Models", "models"),
					huh.NewOption("Providers", "providers"),
					huh.NewOption("Active model", "active"),
					huh.NewOption("Term extraction", "term"),
					huh.NewOption("Translation", "translation"),
					huh.NewOption("Output", "output"),
					huh.NewOption("Paths", "paths"),
					huh.NewOption("Services", "services"),
					huh.NewOption("Quit", "done"),
				).
				Value(&choice),
		)).Run()
		if err != nil {
			return err
		}

		switch choice {
		case "models":
			err = editModels(store)
		case "providers":
			err = editProviders(store)
		case "active":
			err = editActiveModel(store)
		case "term":
			err = editTermExtraction(store)
		case "translation":
			err = editTranslation(store)
		case "output":
			err = editOutput(store)
		case "paths":
			err = editPaths(store)
		case "services":
			err = editServices(store)
		case "done":
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// editProviders manages the provider list. Built-in providers can be edited
// but not removed; their id never changes.
func editProviders(store *settings.Store) error {
	for {
		snap := store.Snapshot()

		opts := []huh.Option[string]{
			huh.NewOption("Add provider", "add"),
		}
		for _, p := range snap.Providers {
			opts = append(opts, huh.NewOption(fmt.Sprintf("Edit: %s", p.Name), "edit:"+p.ID))
		}
		for _, p := range snap.Providers {
			if p.Builtin {
				continue
			}
			opts = append(opts, huh.NewOption(fmt.Sprintf("Remove: %s", p.Name), "remove:"+p.ID))
		}
		opts = append(opts, huh.NewOption("Back", "back"))

		var choice string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Providers").Options(opts...).Value(&choice),
		)).Run(); err != nil {
			return err
		}

		switch {
		case choice == "add":
			p := settings.Provider{ID: settings.NewProviderID()}
			if err := providerForm(&p); err != nil {
				return err
			}
			if err := store.AddProvider(p); err != nil {
				fmt.Printf("could not add provider: %v\n", err)
			}

		case strings.HasPrefix(choice, "edit:"):
			id := strings.TrimPrefix(choice, "edit:")
			p, ok := findProvider(snap, id)
			if !ok {
				continue
			}
			if err := providerForm(&p); err != nil {
				return err
			}
			if err := store.UpdateProvider(id, p.Name, p.DefaultBaseURL, p.Icon); err != nil {
				fmt.Printf("could not update provider: %v\n", err)
			}

		case strings.HasPrefix(choice, "remove:"):
			id := strings.TrimPrefix(choice, "remove:")
			if err := store.RemoveProvider(id); err != nil {
				fmt.Printf("could not remove provider: %v\n", err)
			}

		case choice == "back":
			return nil
		}
	}
}

// providerForm shows a pre-filled form for one provider's editable fields.
func providerForm(p *settings.Provider) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&p.Name),
		huh.NewInput().Title("Default base URL").Value(&p.DefaultBaseURL),
		huh.NewInput().Title("Icon (optional)").Value(&p.Icon),
	)).Run()
}

// editModels picks a provider, then manages its model list.
func editModels(store *settings.Store) error {
	snap := store.Snapshot()
	if len(snap.Providers) == 0 {
		fmt.Println("No providers configured.")
		return nil
	}

	provOpts := make([]huh.Option[string], 0, len(snap.Providers)+1)
	for _, p := range snap.Providers {
		provOpts = append(provOpts, huh.NewOption(fmt.Sprintf("%s (%d models)", p.Name, len(p.Models)), p.ID))
	}
	provOpts = append(provOpts, huh.NewOption("Back", "back"))

	var providerID string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Provider").Options(provOpts...).Value(&providerID),
	)).Run(); err != nil {
		return err
	}
	if providerID == "back" {
		return nil
	}

	return editProviderModels(store, providerID)
}

func editProviderModels(store *settings.Store, providerID string) error {
	for {
		snap := store.Snapshot()
		p, ok := findProvider(snap, providerID)
		if !ok {
			return nil
		}

		opts := []huh.Option[string]{
			huh.NewOption("Add model", "add"),
		}
		for _, m := range p.Models {
			label := m.DisplayName
			if m.ID == snap.SelectedModelID {
				label += " (selected)"
			}
			opts = append(opts, huh.NewOption("Edit: "+label, "edit:"+m.ID))
		}
		for _, m := range p.Models {
			opts = append(opts, huh.NewOption("Remove: "+m.DisplayName, "remove:"+m.ID))
		}
		opts = append(opts, huh.NewOption("Back", "back"))

		var choice string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title(p.Name+" models").Options(opts...).Value(&choice),
		)).Run(); err != nil {
			return err
		}

		switch {
		case choice == "add":
			m := settings.ModelConfig{ID: settings.NewModelID()}
			if err := modelForm(&m); err != nil {
				return err
			}
			if m.DisplayName == "" {
				m.DisplayName = m.ModelName
			}
			if err := store.AddModel(providerID, m); err != nil {
				fmt.Printf("could not add model: %v\n", err)
			}

		case strings.HasPrefix(choice, "edit:"):
			id := strings.TrimPrefix(choice, "edit:")
			m, ok := findModel(p, id)
			if !ok {
				continue
			}
			if err := modelForm(&m); err != nil {
				return err
			}
			if err := store.UpdateModel(id, m); err != nil {
				fmt.Printf("could not update model: %v\n", err)
			}

		case strings.HasPrefix(choice, "remove:"):
			id := strings.TrimPrefix(choice, "remove:")
			if err := store.RemoveModel(id); err != nil {
				fmt.Printf("could not remove model: %v\n", err)
			}

		case choice == "back":
			return nil
		}
	}
}

// modelForm shows a pre-filled form for one model configuration.
func modelForm(m *settings.ModelConfig) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Display name").Value(&m.DisplayName),
			huh.NewInput().Title("Model name").Value(&m.ModelName),
			huh.NewInput().Title("API key").EchoMode(huh.EchoModePassword).Value(&m.APIKey),
			huh.NewInput().Title("Base URL override (empty = provider default)").Value(&m.BaseURL),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Enable JSON mode").Value(&m.EnableJSONMode),
			huh.NewConfirm().Title("Send DashScope header").Value(&m.SendDashScopeHeader),
			huh.NewConfirm().Title("Suppress temperature parameter").Value(&m.NoSendTemperature),
		).Title("Capabilities"),
	).Run()
}

// editActiveModel selects which model new runs use.
func editActiveModel(store *settings.Store) error {
	snap := store.Snapshot()

	opts := []huh.Option[string]{}
	for _, p := range snap.Providers {
		for _, m := range p.Models {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s / %s", p.Name, m.DisplayName), m.ID))
		}
	}
	if len(opts) == 0 {
		fmt.Println("No models configured yet — add one under Models.")
		return nil
	}
	opts = append(opts, huh.NewOption("None", ""))

	choice := snap.SelectedModelID
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Active model").Options(opts...).Value(&choice),
	)).Run(); err != nil {
		return err
	}

	if err := store.SelectModel(choice); err != nil {
		fmt.Printf("could not select model: %v\n", err)
	}
	return nil
}

// editTermExtraction configures the glossary-extraction model: defer to the
// active model, reuse a stored model by id, or an ad-hoc override.
func editTermExtraction(store *settings.Store) error {
	snap := store.Snapshot()
	te := snap.TermExtraction

	mode := "main"
	switch {
	case te.UseSeparateConfig && te.ModelConfigID != "":
		mode = "stored"
	case te.UseSeparateConfig:
		mode = "custom"
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Term extraction model").
			Options(
				huh.NewOption("Use the active model", "main"),
				huh.NewOption("Use another stored model", "stored"),
				huh.NewOption("Custom override", "custom"),
			).
			Value(&mode),
		huh.NewInput().Title("Reasoning effort (optional)").Value(&te.Reasoning),
	)).Run(); err != nil {
		return err
	}

	switch mode {
	case "main":
		te.UseSeparateConfig = false
		te.ModelConfigID = ""

	case "stored":
		opts := []huh.Option[string]{}
		for _, p := range snap.Providers {
			for _, m := range p.Models {
				opts = append(opts, huh.NewOption(fmt.Sprintf("%s / %s", p.Name, m.DisplayName), m.ID))
			}
		}
		if len(opts) == 0 {
			fmt.Println("No models configured yet — add one under Models.")
			return nil
		}
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Stored model").Options(opts...).Value(&te.ModelConfigID),
		)).Run(); err != nil {
			return err
		}
		te.UseSeparateConfig = true

	case "custom":
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Model (empty = active model's)").Value(&te.CustomModel),
			huh.NewInput().Title("API key (empty = active model's)").EchoMode(huh.EchoModePassword).Value(&te.CustomAPIKey),
			huh.NewInput().Title("Base URL (empty = active model's)").Value(&te.CustomBaseURL),
		)).Run(); err != nil {
			return err
		}
		te.UseSeparateConfig = true
		te.ModelConfigID = ""
	}

	return store.SetTermExtraction(te)
}

// editTranslation configures language pair, throughput, and prompt options.
func editTranslation(store *settings.Store) error {
	tr := store.Snapshot().Translation

	qps := strconv.Itoa(tr.QPS)
	minLen := strconv.Itoa(tr.MinTextLength)
	workers := strconv.Itoa(tr.PoolMaxWorkers)
	termWorkers := strconv.Itoa(tr.TermPoolMaxWorkers)

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Source language").Value(&tr.LangIn),
			huh.NewInput().Title("Target language").Value(&tr.LangOut),
			huh.NewInput().Title("Requests per second").Value(&qps).Validate(validateNonNegativeInt),
			huh.NewInput().Title("Minimum text length").Value(&minLen).Validate(validateNonNegativeInt),
		),
		huh.NewGroup(
			huh.NewInput().Title("Worker pool size (0 = auto)").Value(&workers).Validate(validateNonNegativeInt),
			huh.NewInput().Title("Term extraction pool size (0 = auto)").Value(&termWorkers).Validate(validateNonNegativeInt),
			huh.NewText().Title("Custom system prompt (optional)").Value(&tr.CustomSystemPrompt),
			huh.NewConfirm().Title("Auto-extract glossary").Value(&tr.AutoExtractGlossary),
			huh.NewConfirm().Title("Disable same-text fallback").Value(&tr.DisableSameTextFallback),
			huh.NewConfirm().Title("Add formula placeholder hint").Value(&tr.AddFormulaPlaceholdHint),
		),
	).Run(); err != nil {
		return err
	}

	tr.QPS, _ = strconv.Atoi(qps)
	tr.MinTextLength, _ = strconv.Atoi(minLen)
	tr.PoolMaxWorkers, _ = strconv.Atoi(workers)
	tr.TermPoolMaxWorkers, _ = strconv.Atoi(termWorkers)

	return store.SetTranslation(tr)
}

// editOutput configures which PDFs a run produces and the compatibility
// switches passed to the engine.
func editOutput(store *settings.Store) error {
	p := store.Snapshot().PDF

	maxPages := strconv.Itoa(p.MaxPagesPerPart)
	splitFactor := strconv.FormatFloat(p.ShortLineSplitFactor, 'f', -1, 64)
	iouThreshold := strconv.FormatFloat(p.NonFormulaLineIOUThreshold, 'f', -1, 64)
	protThreshold := strconv.FormatFloat(p.FigureTableProtectionThreshold, 'f', -1, 64)

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Produce dual-language PDF").Value(&p.OutputDual),
			huh.NewConfirm().Title("Produce translated-only PDF").Value(&p.OutputMono),
			huh.NewSelect[string]().
				Title("Watermark").
				Options(
					huh.NewOption("Watermarked", settings.WatermarkModeWatermarked),
					huh.NewOption("No watermark", settings.WatermarkModeNone),
					huh.NewOption("Both", settings.WatermarkModeBoth),
				).
				Value(&p.WatermarkMode),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Skip clean").Value(&p.SkipClean),
			huh.NewConfirm().Title("Translate before merging dual pages").Value(&p.DualTranslateFirst),
			huh.NewConfirm().Title("Enhance compatibility").Value(&p.EnhanceCompatibility),
			huh.NewConfirm().Title("Alternate pages in dual output").Value(&p.UseAlternatingPagesDual),
			huh.NewInput().Title("Max pages per part (0 = no split)").Value(&maxPages).Validate(validateNonNegativeInt),
			huh.NewConfirm().Title("Split short lines").Value(&p.SplitShortLines),
			huh.NewInput().Title("Short line split factor").Value(&splitFactor).Validate(validateNonNegativeFloat),
		).Title("Compatibility"),
		huh.NewGroup(
			huh.NewConfirm().Title("Skip scanned detection").Value(&p.SkipScannedDetection),
			huh.NewConfirm().Title("OCR workaround").Value(&p.OCRWorkaround),
			huh.NewConfirm().Title("Auto-enable OCR workaround").Value(&p.AutoEnableOCRWorkaround),
			huh.NewConfirm().Title("Skip form rendering").Value(&p.SkipFormRender),
			huh.NewConfirm().Title("Skip curve rendering").Value(&p.SkipCurveRender),
		).Title("Scanned documents"),
		huh.NewGroup(
			huh.NewConfirm().Title("Disable rich text translation").Value(&p.DisableRichTextTranslate),
			huh.NewSelect[string]().
				Title("Primary font family").
				Options(
					huh.NewOption("Automatic", ""),
					huh.NewOption("Serif", "serif"),
					huh.NewOption("Sans-serif", "sans-serif"),
					huh.NewOption("Script", "script"),
				).
				Value(&p.PrimaryFontFamily),
			huh.NewInput().Title("Formula font pattern").Value(&p.FormularFontPattern),
			huh.NewInput().Title("Formula character pattern").Value(&p.FormularCharPattern),
			huh.NewConfirm().Title("Remove non-formula lines").Value(&p.RemoveNonFormulaLines),
			huh.NewInput().Title("Non-formula line IoU threshold").Value(&iouThreshold).Validate(validateNonNegativeFloat),
			huh.NewInput().Title("Figure/table protection threshold").Value(&protThreshold).Validate(validateNonNegativeFloat),
			huh.NewConfirm().Title("Only parse and regenerate, skip translation").Value(&p.OnlyParseGeneratePDF),
		).Title("Rendering"),
	).Run(); err != nil {
		return err
	}

	p.MaxPagesPerPart, _ = strconv.Atoi(maxPages)
	if f, err := strconv.ParseFloat(splitFactor, 64); err == nil {
		p.ShortLineSplitFactor = f
	}
	if f, err := strconv.ParseFloat(iouThreshold, 64); err == nil {
		p.NonFormulaLineIOUThreshold = f
	}
	if f, err := strconv.ParseFloat(protThreshold, 64); err == nil {
		p.FigureTableProtectionThreshold = f
	}

	return store.SetPDF(p)
}

// editPaths configures filesystem locations.
func editPaths(store *settings.Store) error {
	p := store.Snapshot().Paths

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Output directory (empty = current)").Value(&p.OutputDir),
		huh.NewInput().Title("Working directory (empty = temp)").Value(&p.WorkingDir),
		huh.NewInput().Title("Glossary CSV files (comma-separated)").Value(&p.GlossaryFiles),
	)).Run(); err != nil {
		return err
	}

	return store.SetPaths(p)
}

// editServices configures auxiliary service addresses.
func editServices(store *settings.Store) error {
	r := store.Snapshot().RPC

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Document layout service host").Value(&r.DocLayoutHost),
	)).Run(); err != nil {
		return err
	}

	return store.SetRPC(r)
}

func findProvider(snap settings.Settings, id string) (settings.Provider, bool) {
	for _, p := range snap.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return settings.Provider{}, false
}

func findModel(p settings.Provider, id string) (settings.ModelConfig, bool) {
	for _, m := range p.Models {
		if m.ID == id {
			return m, true
		}
	}
	return settings.ModelConfig{}, false
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}
