package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var (
	askKB          string
	askTopK        int
	askModel       string
	askTemperature float64
	askNoSources   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from a knowledge base",
	Long: `Retrieves the most relevant chunks from a knowledge base and asks the
LLM to answer from that context in a single generation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askKB, "kb", domain.DefaultKnowledgeBase, "knowledge base to search")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to retrieve")
	askCmd.Flags().StringVar(&askModel, "model", "", "LLM model override")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", domain.DefaultRAGTemperature, "sampling temperature (0-1)")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "omit the retrieved sources")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errNotConfigured("RAG service")
	}

	includeSources := !askNoSources
	temperature := askTemperature
	answer, err := ragService.Query(cmd.Context(), domain.RAGQuery{
		Query:           strings.Join(args, " "),
		KnowledgeBaseID: askKB,
		TopK:            askTopK,
		IncludeSources:  &includeSources,
		Model:           askModel,
		Temperature:     &temperature,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	return render(cmd, answer, func(p *printer) {
		p.Println(answer.Answer)
		if len(answer.Sources) > 0 {
			p.Println()
			p.Heading("Sources:")
			for i := range answer.Sources {
				p.Muted("  [%d] %s (%.2f)", i+1, sourceLabel(answer.Sources[i]), answer.Sources[i].Score)
			}
		}
		p.Println()
		p.Muted("%s | %d in / %d out tokens", answer.Model, answer.Usage.InputTokens, answer.Usage.OutputTokens)
	})
}

// sourceLabel names a result by its source, then its document id.
func sourceLabel(r domain.SearchResult) string {
	if src, ok := r.Source(); ok {
		return src
	}
	if id, ok := r.Metadata[domain.MetaDocumentID].(string); ok && id != "" {
		return id
	}
	return "unknown"
}
