package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codelive/server/internal/store"
)

// CodeBlockHandlers provides HTTP handlers for the code block REST API.
type CodeBlockHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewCodeBlockHandlers creates a new code block handlers instance.
func NewCodeBlockHandlers(st store.Store, logger *zerolog.Logger) *CodeBlockHandlers {
	return &CodeBlockHandlers{
		store: st,
		log:   logger,
	}
}

// CreateCodeBlockRequest represents the create code block request body.
type CreateCodeBlockRequest struct {
	Title           string `json:"title" binding:"required,min=1,max=128"`
	InitialTemplate string `json:"initial_template"`
	Solution        string `json:"solution" binding:"required"`
}

// CodeBlockResponse represents a code block in API responses.
// The solution is included: matching happens server-side, but the mentor's
// client renders it alongside the editor.
type CodeBlockResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	InitialTemplate string `json:"initial_template"`
	Solution        string `json:"solution"`
	CreatedAt       string `json:"created_at"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// List handles listing all code blocks.
// GET /api/codeblocks
func (h *CodeBlockHandlers) List(c *gin.Context) {
	blocks, err := h.store.ListCodeBlocks(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list code blocks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CodeBlockResponse, 0, len(blocks))
	for _, block := range blocks {
		response = append(response, codeBlockResponse(block))
	}

	h.log.Debug().Int("block_count", len(blocks)).Msg("code blocks listed")
	c.JSON(http.StatusOK, response)
}

// Get handles fetching a single code block.
// GET /api/codeblocks/:id
func (h *CodeBlockHandlers) Get(c *gin.Context) {
	id := c.Param("id")

	block, err := h.store.GetCodeBlock(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "code block not found"})
			return
		}
		h.log.Error().Err(err).Str("block_id", id).Msg("failed to fetch code block")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, codeBlockResponse(block))
}

// Create handles code block authoring.
// POST /api/codeblocks
func (h *CodeBlockHandlers) Create(c *gin.Context) {
	var req CreateCodeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create code block request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	block, err := h.store.CreateCodeBlock(c.Request.Context(), req.Title, req.InitialTemplate, req.Solution)
	if err != nil {
		h.log.Error().Err(err).Str("title", req.Title).Msg("failed to create code block")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("block_id", block.ID).Str("title", block.Title).Msg("code block created")
	c.JSON(http.StatusCreated, codeBlockResponse(block))
}

func codeBlockResponse(block *store.CodeBlock) CodeBlockResponse {
	return CodeBlockResponse{
		ID:              block.ID,
		Title:           block.Title,
		InitialTemplate: block.InitialTemplate,
		Solution:        block.Solution,
		CreatedAt:       block.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
