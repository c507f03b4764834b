package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexusai/internal/manager"
	"nexusai/internal/providers"
	"nexusai/internal/utils"
)

// GatewayHandler serves the gateway's JSON API.
type GatewayHandler struct {
	manager *manager.Manager
	store   manager.CredentialStore
	logger  *utils.Logger
}

// NewGatewayHandler creates a handler bound to the session manager.
func NewGatewayHandler(deps *Dependencies) *GatewayHandler {
	return &GatewayHandler{
		manager: deps.Manager,
		store:   deps.Store,
		logger:  deps.Logger,
	}
}

// ProviderInfo describes one backend in the providers listing.
type ProviderInfo struct {
	ID          providers.ProviderID `json:"id"`
	DisplayName string               `json:"display_name"`
	Activated   bool                 `json:"activated"`
	Active      bool                 `json:"active"`
}

// ProvidersResponse is the body of GET /api/v1/providers.
type ProvidersResponse struct {
	Active    providers.ProviderID `json:"active_provider,omitempty"`
	Providers []ProviderInfo       `json:"providers"`
}

// SetCredentialRequest sets or clears one provider's API key.
type SetCredentialRequest struct {
	Provider providers.ProviderID `json:"provider_id"`
	APIKey   string               `json:"api_key"`
}

// SetActiveRequest switches the active provider.
type SetActiveRequest struct {
	Provider providers.ProviderID `json:"provider_id"`
}

// GenerateCode handles POST /api/v1/generate/code.
func (h *GatewayHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req manager.CodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Requirements == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Requirements are required")
		return
	}
	h.respondResult(w, r, func() (*providers.GenerationResult, error) {
		return h.manager.GenerateCode(r.Context(), req)
	})
}

// GenerateDocs handles POST /api/v1/generate/docs.
func (h *GatewayHandler) GenerateDocs(w http.ResponseWriter, r *http.Request) {
	var req manager.DocsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Code is required")
		return
	}
	h.respondResult(w, r, func() (*providers.GenerationResult, error) {
		return h.manager.GenerateDocumentation(r.Context(), req)
	})
}

// GenerateTests handles POST /api/v1/generate/tests.
func (h *GatewayHandler) GenerateTests(w http.ResponseWriter, r *http.Request) {
	var req manager.TestsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Code is required")
		return
	}
	h.respondResult(w, r, func() (*providers.GenerationResult, error) {
		return h.manager.GenerateTests(r.Context(), req)
	})
}

// FixBugs handles POST /api/v1/generate/fix.
func (h *GatewayHandler) FixBugs(w http.ResponseWriter, r *http.Request) {
	var req manager.FixRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Code is required")
		return
	}
	if req.ErrorMessage == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Error message is required")
		return
	}
	h.respondResult(w, r, func() (*providers.GenerationResult, error) {
		return h.manager.FixBugs(r.Context(), req)
	})
}

// OptimizeCode handles POST /api/v1/generate/optimize.
func (h *GatewayHandler) OptimizeCode(w http.ResponseWriter, r *http.Request) {
	var req manager.OptimizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Code is required")
		return
	}
	h.respondResult(w, r, func() (*providers.GenerationResult, error) {
		return h.manager.OptimizeCode(r.Context(), req)
	})
}

// Providers handles GET /api/v1/providers.
func (h *GatewayHandler) Providers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	active := h.manager.ActiveProvider()
	activated := make(map[providers.ProviderID]bool)
	for _, id := range h.manager.AvailableProviders() {
		activated[id] = true
	}

	resp := ProvidersResponse{Active: active}
	for _, id := range providers.AllProviders() {
		profile, err := providers.Resolve(id)
		if err != nil {
			continue
		}
		resp.Providers = append(resp.Providers, ProviderInfo{
			ID:          id,
			DisplayName: profile.DisplayName,
			Activated:   activated[id],
			Active:      id == active,
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// SetActive handles PUT /api/v1/providers/active.
func (h *GatewayHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.manager.SetActive(req.Provider); err != nil {
		h.respondManagerError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"active_provider": string(req.Provider),
	})
}

// SetCredential handles POST /api/v1/credentials.
func (h *GatewayHandler) SetCredential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SetCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Provider == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Provider id is required")
		return
	}

	if err := h.manager.SetCredential(req.Provider, req.APIKey); err != nil {
		h.respondManagerError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"provider_id":     req.Provider,
		"activated":       req.APIKey != "",
		"active_provider": h.manager.ActiveProvider(),
	})
}

// SaveCredentials handles POST /api/v1/credentials/save.
func (h *GatewayHandler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if h.store == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Credential store not configured")
		return
	}

	if err := h.manager.SaveCredentials(r.Context(), h.store); err != nil {
		h.logger.Error("failed to save credentials", "error", err.Error())
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save credentials")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// LoadCredentials handles POST /api/v1/credentials/load.
func (h *GatewayHandler) LoadCredentials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if h.store == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Credential store not configured")
		return
	}

	if err := h.manager.LoadCredentials(r.Context(), h.store); err != nil {
		h.logger.Error("failed to load credentials", "error", err.Error())
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load credentials")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":          "loaded",
		"providers":       h.manager.AvailableProviders(),
		"active_provider": h.manager.ActiveProvider(),
	})
}

func (h *GatewayHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func (h *GatewayHandler) respondResult(w http.ResponseWriter, r *http.Request, call func() (*providers.GenerationResult, error)) {
	result, err := call()
	if err != nil {
		h.respondManagerError(w, err)
		return
	}

	if result.Err != nil {
		// the provider call failed; the body still carries the
		// normalized result shape with its error detail
		utils.RespondWithJSON(w, http.StatusBadGateway, result)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *GatewayHandler) respondManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, providers.ErrUnknownProvider):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, manager.ErrProviderNotActivated):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, manager.ErrNoActiveProvider):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", "error", err.Error())
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
