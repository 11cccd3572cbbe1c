package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

const (
	formFile            = "file"
	formFiles           = "files"
	formKnowledgeBaseID = "knowledge_base_id"
	formMetadata        = "metadata"
)

type handlers struct {
	services Services
}

// unavailable reports a missing service as a 503.
func unavailable(c *gin.Context, sentinel error, what string) {
	RespondError(c, fmt.Errorf("%w: %s is not configured", sentinel, what))
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ragent API",
		"version": h.services.Version,
		"endpoints": gin.H{
			"rag":       "/api/rag",
			"agent":     "/api/agent",
			"documents": "/api/documents",
			"health":    "/health",
		},
	})
}

func (h *handlers) health(c *gin.Context) {
	if h.services.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "services": gin.H{}})
		return
	}

	status := "healthy"
	if !h.services.Health.Healthy() {
		status = "degraded"
	}

	components := h.services.Health.Status()
	ready := make(map[string]bool, len(components))
	for _, comp := range components {
		ready[comp.Name] = comp.Ready()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"services":   ready,
		"components": components,
	})
}

func (h *handlers) ragQuery(c *gin.Context) {
	if h.services.RAG == nil {
		unavailable(c, domain.ErrGenerationUnavailable, "RAG service")
		return
	}

	var q domain.RAGQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	answer, err := h.services.RAG.Query(c.Request.Context(), q)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *handlers) ragSearch(c *gin.Context) {
	if h.services.Retriever == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "retriever")
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	if err := req.Normalise(); err != nil {
		RespondError(c, err)
		return
	}

	results, err := h.services.Retriever.Search(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"query":   req.Query,
	})
}

func (h *handlers) knowledgeBases(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	kbs, err := h.services.Documents.KnowledgeBases(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"knowledge_bases": kbs})
}

func (h *handlers) agentExecute(c *gin.Context) {
	if h.services.Agent == nil {
		unavailable(c, domain.ErrGenerationUnavailable, "agent service")
		return
	}

	var req domain.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	result, err := h.services.Agent.Execute(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// toolView is the wire shape of a tool listing entry.
type toolView struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  domain.InputSchema `json:"parameters"`
}

func (h *handlers) listTools(c *gin.Context) {
	if h.services.Tools == nil {
		c.JSON(http.StatusOK, gin.H{"tools": []toolView{}})
		return
	}

	defs := h.services.Tools.ListTools()
	tools := make([]toolView, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, toolView{Name: d.Name, Description: d.Description, Parameters: d.InputSchema})
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

func (h *handlers) invokeTool(c *gin.Context) {
	name := c.Param("name")
	if h.services.Tools == nil || len(h.services.Tools.Definitions([]string{name})) == 0 {
		RespondError(c, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name))
		return
	}

	params := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil && err != io.EOF {
			RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
			return
		}
	}

	result := h.services.Tools.Invoke(c.Request.Context(), name, params, domain.DefaultKnowledgeBase)
	c.JSON(http.StatusOK, gin.H{"tool": name, "result": result})
}

func (h *handlers) uploadDocument(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	header, err := c.FormFile(formFile)
	if err != nil {
		RespondError(c, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, formFile))
		return
	}
	metadata, err := parseMetadata(c.PostForm(formMetadata))
	if err != nil {
		RespondError(c, err)
		return
	}
	upload, err := readUpload(header)
	if err != nil {
		RespondError(c, err)
		return
	}
	upload.Metadata = metadata

	result, err := h.services.Documents.UploadFile(c.Request.Context(), upload, c.PostForm(formKnowledgeBaseID))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// addTextRequest is the body of POST /api/documents/add-text.
type addTextRequest struct {
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata"`
	KnowledgeBaseID string         `json:"knowledge_base_id"`
}

func (h *handlers) addText(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	var req addTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	result, err := h.services.Documents.AddText(c.Request.Context(), req.Content, req.KnowledgeBaseID, req.Metadata)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) batchUpload(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	headers := form.File[formFiles]
	if len(headers) == 0 {
		headers = form.File[formFiles+"[]"]
	}
	if len(headers) == 0 {
		RespondError(c, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, formFiles))
		return
	}

	uploads := make([]domain.FileUpload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			RespondError(c, err)
			return
		}
		uploads = append(uploads, upload)
	}

	results, err := h.services.Documents.BatchUpload(c.Request.Context(), uploads, c.PostForm(formKnowledgeBaseID))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_uploaded": len(results),
		"results":        results,
	})
}

func (h *handlers) deleteDocument(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	id := c.Param("id")
	removed, err := h.services.Documents.Delete(c.Request.Context(), id, c.Query(formKnowledgeBaseID))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         domain.UploadStatusSuccess,
		"message":        fmt.Sprintf("Document %s deleted", id),
		"chunks_deleted": removed,
	})
}

func (h *handlers) listDocuments(c *gin.Context) {
	if h.services.Documents == nil {
		unavailable(c, domain.ErrRetrievalUnavailable, "document service")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	docs, err := h.services.Documents.List(c.Request.Context(), c.Query(formKnowledgeBaseID), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
}

// parseMetadata decodes the metadata form field, a JSON object string.
func parseMetadata(raw string) (map[string]any, error) {
	metadata := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata must be a JSON object: %w", domain.ErrInvalidInput, err)
	}
	return metadata, nil
}

func readUpload(fh *multipart.FileHeader) (domain.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.FileUpload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.FileUpload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.FileUpload{Filename: fh.Filename, Content: content}, nil
}
