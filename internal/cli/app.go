package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/adapter"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/config"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/db"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/logger"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/mdcheck"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/tokenizer"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// globalFlags are shared by every command that translates.
type globalFlags struct {
	configPath string
	provider   string
	model      string
	noCache    bool
	noHistory  bool
	check      bool
}

var flags globalFlags

// app bundles everything a translation command needs. Build it with
// openApp and release it with Close.
type app struct {
	cfg          config.Settings
	log          logger.Logger
	counter      tokenizer.Counter
	caller       translate.Caller
	cache        *history.CachingCaller // nil when caching is off
	store        *history.Store         // nil when both cache and history are off
	database     *db.DB
	systemPrompt string
	record       bool
	check        bool
}

// appMode selects how much of the app is wired.
type appMode int

const (
	// offline skips the model client and the database (plan).
	offline appMode = iota
	online
)

// loadSettings reads .env and the settings file, applies flag overrides and
// builds the logger.
func loadSettings(f globalFlags) (config.Settings, logger.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Settings{}, nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		cfg.GPTModel = f.model
	}
	if f.noCache {
		cfg.Cache = false
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.Level(cfg.LogLevel)
	logCfg.JSON = cfg.LogJSON
	return cfg, logger.New(logCfg), nil
}

func openApp(f globalFlags, mode appMode) (*app, error) {
	cfg, log, err := loadSettings(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tok, err := tokenizer.New()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:          cfg,
		log:          log,
		counter:      tok,
		systemPrompt: systemPrompt(cfg, log),
		record:       !f.noHistory,
		check:        f.check,
	}
	if mode == offline {
		return a, nil
	}

	caller, err := adapter.New(cfg.Provider, adapter.Options{
		APIKey:  cfg.APIKey(cfg.Provider),
		BaseURL: cfg.BaseURL(cfg.Provider),
		Retries: cfg.Retries,
	})
	if err != nil {
		return nil, err
	}
	a.caller = caller

	if cfg.Cache || a.record {
		if err := a.openStore(); err != nil {
			// History is an extra; translation still works without it.
			log.Warn("history database unavailable", "error", err)
			a.record = false
			return a, nil
		}
	}
	if cfg.Cache {
		a.cache = history.NewCachingCaller(caller, a.store, cfg.Provider, func(err error) {
			log.Warn("translation cache", "error", err)
		})
		a.caller = a.cache
	}
	return a, nil
}

func (a *app) openStore() error {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return err
	}
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	a.database = database
	a.store = history.NewStore(database)
	return nil
}

// Close releases the database, if one was opened.
func (a *app) Close() {
	if a.database != nil {
		_ = a.database.Close()
	}
}

// systemPrompt assembles the system prompt from cfg, logging what was loaded.
func systemPrompt(cfg config.Settings, log logger.Logger) string {
	base := translate.DefaultSystemPrompt
	if cfg.SysPrompt != "" {
		log.Info("default overridden", "sysprompt", cfg.SysPrompt)
		base = cfg.SysPrompt
	}
	if len(cfg.IgnoreList) > 0 {
		log.Info("loaded ignore list", "terms", translate.QuoteTerms(cfg.IgnoreList))
		if warnIgnoreList(cfg.Provider, cfg.GPTModel) {
			log.Warn("an ignore list was loaded but the selected model is older than gpt-4; unexpected behavior may occur",
				"model", cfg.GPTModel)
		}
	}
	return translate.BuildSystemPrompt(base, cfg.IgnoreList)
}

// warnIgnoreList reports whether model is an OpenAI model that may not
// honour the ignore list.
func warnIgnoreList(provider, model string) bool {
	if provider != "" && provider != adapter.ProviderOpenAI {
		return false
	}
	return !strings.HasPrefix(model, "gpt-4")
}

func (a *app) pipeline(opts ...translate.Option) *translate.Pipeline {
	opts = append([]translate.Option{translate.WithRequestLimit(a.cfg.RequestLimit)}, opts...)
	return translate.NewPipeline(a.caller, a.counter, opts...)
}

// fileReport is the outcome of translating one file.
type fileReport struct {
	Result    translate.Result
	CacheHits int
	Diffs     []string
}

// translateFile translates in and writes out. Nothing is written when any
// request fails.
func (a *app) translateFile(ctx context.Context, in, out string, progress bool) (fileReport, error) {
	var report fileReport

	src, err := os.ReadFile(in)
	if err != nil {
		return report, fmt.Errorf("read input: %w", err)
	}
	text := string(src)
	log := a.log.With("input", in)
	log.Info("translating", "output", out, "model", a.cfg.GPTModel, "provider", a.cfg.Provider)

	var bar *progressbar.ProgressBar
	opts := []translate.Option{translate.WithChunkHook(func(ev translate.ChunkEvent) {
		log.Debug("translating chunk", "chunk", ev.Index, "tokens", ev.Tokens)
		if bar != nil {
			bar.Describe(fmt.Sprintf("  Translating chunk #%d", ev.Index+1))
			_ = bar.Add(1)
		}
	})}
	p := a.pipeline(opts...)

	sysTokens := tokenizer.MessageTokens(a.counter, a.systemPrompt)
	docTokens := tokenizer.MessageTokens(a.counter, text)
	log.Info("computed prompt tokens", "system", sysTokens, "text", docTokens, "total", sysTokens+docTokens)
	if p.NeedsChunking(a.systemPrompt, text) {
		log.Warn("the input file is too big; it will be chunked", "tokens", sysTokens+docTokens, "limit", p.RequestLimit())
	}

	if progress && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("  Translating"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}

	if a.cache != nil {
		a.cache.ResetHits()
	}
	res, err := p.TranslateDocument(ctx, text, a.systemPrompt, a.cfg.GPTModel)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return report, err
	}
	report.Result = res
	if a.cache != nil {
		report.CacheHits = a.cache.Hits()
	}

	if err := os.WriteFile(out, []byte(res.Text), 0o644); err != nil {
		return report, fmt.Errorf("write output: %w", err)
	}

	reportUsage(log, res.Usage)
	if report.CacheHits > 0 {
		log.Info("served from cache", "requests", report.CacheHits)
	}

	if a.check {
		report.Diffs = mdcheck.Compare(src, []byte(res.Text))
		for _, d := range report.Diffs {
			log.Warn("structure mismatch", "detail", d)
		}
	}

	if a.record && a.store != nil {
		_, err := a.store.InsertRun(history.Run{
			InputPath:  in,
			OutputPath: out,
			Provider:   a.cfg.Provider,
			Model:      a.cfg.GPTModel,
			Chunks:     res.Chunks,
			CacheHits:  report.CacheHits,
			Usage:      res.Usage,
		})
		if err != nil {
			log.Warn("could not record run", "error", err)
		}
	}
	return report, nil
}

func reportUsage(log logger.Logger, u *translate.Usage) {
	if u == nil {
		log.Warn("no usage info received")
		return
	}
	log.Info("actual usage (due to chunking and/or overhead)",
		"prompt", u.PromptTokens, "response", u.CompletionTokens, "total", u.TotalTokens)
}
