package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mpetrov/chatgpt-tui-client/pkg/api/response"
)

type CompletionProvider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

type generate struct {
	provider CompletionProvider
	writer   response.JSONResponseWriter
}

func NewGenerate(provider CompletionProvider) *generate {
	return &generate{
		provider: provider,
		writer:   response.JSONResponseWriter{},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (g *generate) GenerateResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.writer.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Only POST is supported.")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writer.WriteErrorResponse(w, http.StatusBadRequest, "Request body is not valid JSON.")
		return
	}
	if req.Prompt == "" {
		g.writer.WriteErrorResponse(w, http.StatusBadRequest, "Prompt is missing or empty.")
		return
	}

	resp, err := g.provider.GenerateCompletion(r.Context(), req.Prompt)
	if err != nil {
		g.writer.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	g.writer.WriteSuccessResponse(w, map[string]string{
		"response": resp,
	})
}
