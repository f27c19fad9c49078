package export

import (
	"encoding/json"
	"time"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/history"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// JSONExporter renders runs as structured JSON.
type JSONExporter struct{}

type jsonOutput struct {
	Runs  []jsonRun       `json:"runs"`
	Total translate.Usage `json:"total_usage"`
}

type jsonRun struct {
	ID         string           `json:"id"`
	InputPath  string           `json:"input"`
	OutputPath string           `json:"output"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model"`
	Chunks     int              `json:"chunks"`
	CacheHits  int              `json:"cache_hits"`
	Usage      *translate.Usage `json:"usage"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (e *JSONExporter) Export(runs []history.Run) (string, error) {
	out := jsonOutput{Runs: make([]jsonRun, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, jsonRun{
			ID:         r.ID,
			InputPath:  r.InputPath,
			OutputPath: r.OutputPath,
			Provider:   r.Provider,
			Model:      r.Model,
			Chunks:     r.Chunks,
			CacheHits:  r.CacheHits,
			Usage:      r.Usage,
			CreatedAt:  r.CreatedAt,
		})
	}
	out.Total.PromptTokens, out.Total.CompletionTokens, out.Total.TotalTokens = totals(runs)

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
