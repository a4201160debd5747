package web

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxRequestSize bounds the body of a tokenize request.
const maxRequestSize = 4 << 20

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type TokenizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type TokenizeResponse struct {
	Language string          `json:"language"`
	Known    bool            `json:"known"`
	Tokens   json.RawMessage `json:"tokens"`
}

type LanguageResponse struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases"`
	Extensions []string `json:"extensions"`
}

type DiagnosticResponse struct {
	Language string `json:"language"`
	Token    string `json:"token"`
	Index    int    `json:"index"`
	Pattern  string `json:"pattern"`
	Message  string `json:"message"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	CommitSHA string `json:"commit"`
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req TokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Language == "" {
		http.Error(w, "language is required", http.StatusBadRequest)
		return
	}

	h := s.current()
	tree, err := h.TokenizeContext(r.Context(), req.Text, req.Language)
	if err != nil {
		log.Debugf("tokenize %s: %v", req.Language, err)
		http.Error(w, "Tokenize cancelled", http.StatusServiceUnavailable)
		return
	}

	writeJSONResponse(w, TokenizeResponse{
		Language: req.Language,
		Known:    h.HasLanguage(req.Language),
		Tokens:   json.RawMessage(tree.JSON()),
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	languages := s.current().Languages()

	resp := make([]LanguageResponse, 0, len(languages))
	for _, lang := range languages {
		item := LanguageResponse{
			Name:       lang.Name,
			Aliases:    lang.Aliases,
			Extensions: lang.Extensions,
		}
		if item.Aliases == nil {
			item.Aliases = []string{}
		}
		if item.Extensions == nil {
			item.Extensions = []string{}
		}
		resp = append(resp, item)
	}

	writeJSONResponse(w, resp)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags := s.current().Diagnostics()

	resp := make([]DiagnosticResponse, 0, len(diags))
	for _, d := range diags {
		resp = append(resp, DiagnosticResponse{
			Language: d.Language,
			Token:    d.Token,
			Index:    d.Index,
			Pattern:  d.Pattern,
			Message:  d.Message(),
		})
	}

	writeJSONResponse(w, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, VersionResponse{Version: s.Version, CommitSHA: s.CommitSHA})
}
