package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect knowledge bases",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge bases and their chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runKBList,
}

func init() {
	kbCmd.AddCommand(kbListCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document service")
	}

	kbs, err := documentService.KnowledgeBases(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing knowledge bases: %w", err)
	}
	return render(cmd, map[string]any{"knowledge_bases": kbs}, func(p *printer) {
		printKnowledgeBases(p, kbs)
	})
}

func printKnowledgeBases(p *printer, kbs []domain.KnowledgeBase) {
	if len(kbs) == 0 {
		p.Println("No knowledge bases found.")
		return
	}
	for _, kb := range kbs {
		p.Printf("  %-24s %d chunks\n", kb.ID, kb.DocumentCount)
	}
}
