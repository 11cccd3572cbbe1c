package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var (
	searchKB     string
	searchTopK   int
	searchFilter map[string]string
)

// maxSnippet bounds the content shown per result.
const maxSnippet = 200

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a knowledge base",
	Long: `Embeds the query and returns the closest chunks from a knowledge base,
best first. Scores are 1 - cosine distance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKB, "kb", domain.DefaultKnowledgeBase, "knowledge base to search")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().StringToStringVar(&searchFilter, "filter", nil, "metadata filter, e.g. --filter type=pdf")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errNotConfigured("retriever")
	}

	req := domain.SearchRequest{
		Query:           args[0],
		KnowledgeBaseID: searchKB,
		TopK:            searchTopK,
		Filter:          parseFilter(searchFilter),
	}
	results, err := retriever.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := map[string]any{"query": req.Query, "results": results, "total": len(results)}
	return render(cmd, out, func(p *printer) {
		if len(results) == 0 {
			p.Println("No results found.")
			return
		}
		p.Heading("Results:")
		p.Println()
		for i := range results {
			p.Printf("  [%d] %s (%.2f)\n", i+1, sourceLabel(results[i]), results[i].Score)
			p.Muted("      %s", snippet(results[i].Content, maxSnippet))
			p.Println()
		}
	})
}

// parseFilter turns flag values into filter values, keeping numbers and
// booleans typed so they compare equal to stored metadata.
func parseFilter(raw map[string]string) domain.Filter {
	if len(raw) == 0 {
		return nil
	}
	filter := make(domain.Filter, len(raw))
	for k, v := range raw {
		switch {
		case v == "true" || v == "false":
			filter[k] = v == "true"
		default:
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				filter[k] = n
			} else {
				filter[k] = v
			}
		}
	}
	return filter
}

// snippet collapses whitespace and truncates to limit runes.
func snippet(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
