package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

var (
	docsKB       string
	docsMetadata string
	docsLimit    int
)

const defaultListLimit = 100

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage documents in knowledge bases",
	Long:    `Upload, add, delete and list indexed documents.`,
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Extract, chunk and index files",
	Long: `Extracts text by file extension (txt, md, json, csv, pdf, html, docx,
eml, ...), splits it into overlapping chunks and indexes them. Several
files are ingested concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocsUpload,
}

var docsAddTextCmd = &cobra.Command{
	Use:   "add-text [text]",
	Short: "Index raw text (use - to read stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsAddText,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete every chunk of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Summarise a knowledge base",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

func init() {
	for _, c := range []*cobra.Command{docsUploadCmd, docsAddTextCmd, docsDeleteCmd, docsListCmd} {
		c.Flags().StringVar(&docsKB, "kb", domain.DefaultKnowledgeBase, "knowledge base")
	}
	for _, c := range []*cobra.Command{docsUploadCmd, docsAddTextCmd} {
		c.Flags().StringVar(&docsMetadata, "metadata", "", "extra chunk metadata as a JSON object")
	}
	docsListCmd.Flags().IntVar(&docsLimit, "limit", defaultListLimit, "maximum entries")

	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsAddTextCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsListCmd)
	rootCmd.AddCommand(docsCmd)
}

func parseMetadataFlag() (map[string]any, error) {
	if strings.TrimSpace(docsMetadata) == "" {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(docsMetadata), &metadata); err != nil {
		return nil, fmt.Errorf("%w: --metadata must be a JSON object: %v", domain.ErrInvalidInput, err)
	}
	return metadata, nil
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document service")
	}
	metadata, err := parseMetadataFlag()
	if err != nil {
		return err
	}

	files := make([]domain.FileUpload, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, domain.FileUpload{
			Filename: filepath.Base(path),
			Content:  content,
			Metadata: metadata,
		})
	}

	if len(files) == 1 {
		result, err := documentService.UploadFile(cmd.Context(), files[0], docsKB)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		return render(cmd, result, func(p *printer) {
			printUpload(p, files[0].Filename, result)
		})
	}

	results, err := documentService.BatchUpload(cmd.Context(), files, docsKB)
	if err != nil {
		return fmt.Errorf("batch upload failed: %w", err)
	}
	out := map[string]any{"total_uploaded": len(results), "results": results}
	return render(cmd, out, func(p *printer) {
		for i := range results {
			printUpload(p, files[i].Filename, &results[i])
		}
		p.Muted("%d documents uploaded", len(results))
	})
}

func printUpload(p *printer, name string, r *domain.UploadResult) {
	p.Printf("%s -> %s (%d chunks in %s)\n", name, r.DocumentID, r.ChunksCreated, r.KnowledgeBaseID)
}

func runDocsAddText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document service")
	}
	metadata, err := parseMetadataFlag()
	if err != nil {
		return err
	}

	text := args[0]
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	result, err := documentService.AddText(cmd.Context(), text, docsKB, metadata)
	if err != nil {
		return fmt.Errorf("add text failed: %w", err)
	}
	return render(cmd, result, func(p *printer) {
		printUpload(p, "text", result)
	})
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document service")
	}

	n, err := documentService.Delete(cmd.Context(), args[0], docsKB)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	out := map[string]any{
		"status":         "success",
		"message":        fmt.Sprintf("Document %s deleted", args[0]),
		"chunks_deleted": n,
	}
	return render(cmd, out, func(p *printer) {
		p.Printf("Document %s deleted (%d chunks)\n", args[0], n)
	})
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document service")
	}

	kbs, err := documentService.List(cmd.Context(), docsKB, docsLimit)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	return render(cmd, map[string]any{"documents": kbs, "total": len(kbs)}, func(p *printer) {
		printKnowledgeBases(p, kbs)
	})
}
