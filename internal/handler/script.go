package handler

import (
	"log/slog"
	"net/http"

	models "scriptdesk/internal/domain/models/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/httputil"
)

// ScriptHandler handles script HTTP requests
type ScriptHandler struct {
	scriptService librarySvc.ScriptService
	logger        *slog.Logger
}

// NewScriptHandler creates a new script handler
func NewScriptHandler(scriptService librarySvc.ScriptService, logger *slog.Logger) *ScriptHandler {
	return &ScriptHandler{
		scriptService: scriptService,
		logger:        logger,
	}
}

type updateContentBody struct {
	Content *string `json:"content"`
}

type revertBody struct {
	Version int `json:"version"`
}

// ListScripts lists a project's scripts
// GET /api/projects/{id}/scripts?folder_id=&status=&q=
func (h *ScriptHandler) ListScripts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := models.ScriptFilter{Query: query.Get("q")}
	if folderID := query.Get("folder_id"); folderID != "" {
		filter.FolderID = &folderID
	}
	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseScriptStatus(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}

	scripts, err := h.scriptService.ListScripts(r.Context(), projectID, httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, scripts)
}

// CreateScript creates a script in a folder of the project
// POST /api/projects/{id}/scripts
func (h *ScriptHandler) CreateScript(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req librarySvc.CreateScriptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ProjectID = projectID
	req.UserID = httputil.GetUserID(r)

	script, err := h.scriptService.CreateScript(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, script)
}

// GetScript retrieves a script with its versions
// GET /api/scripts/{id}
func (h *ScriptHandler) GetScript(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	script, err := h.scriptService.GetScript(r.Context(), scriptID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, script)
}

// UpdateScript updates title and metadata
// PATCH /api/scripts/{id}
func (h *ScriptHandler) UpdateScript(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	var req librarySvc.UpdateScriptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	script, err := h.scriptService.UpdateScript(r.Context(), scriptID, httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, script)
}

// UpdateContent appends a new version
// PUT /api/scripts/{id}/content
func (h *ScriptHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	var body updateContentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Content == nil {
		httputil.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	script, err := h.scriptService.UpdateContent(r.Context(), scriptID, httputil.GetUserID(r), *body.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, script)
}

// ListVersions returns the version ledger
// GET /api/scripts/{id}/versions
func (h *ScriptHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	versions, err := h.scriptService.ListVersions(r.Context(), scriptID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// RevertScript restores an earlier version as a new one
// POST /api/scripts/{id}/revert
func (h *ScriptHandler) RevertScript(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	var body revertBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	script, err := h.scriptService.RevertScript(r.Context(), scriptID, httputil.GetUserID(r), body.Version)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, script)
}

// MoveScript files a script under another folder
// POST /api/scripts/{id}/move
func (h *ScriptHandler) MoveScript(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	var req librarySvc.MoveScriptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	script, err := h.scriptService.MoveScript(r.Context(), scriptID, httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, script)
}

// DeleteScript deletes a script
// DELETE /api/scripts/{id}
func (h *ScriptHandler) DeleteScript(w http.ResponseWriter, r *http.Request) {
	scriptID, ok := PathParam(w, r, "id", "Script ID")
	if !ok {
		return
	}

	if err := h.scriptService.DeleteScript(r.Context(), scriptID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
