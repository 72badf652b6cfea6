package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/httputil"
)

// AuditHandler serves folder statistics and the reconcile pass
type AuditHandler struct {
	projectService librarySvc.ProjectService
	auditService   librarySvc.AuditService
	logger         *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(projectService librarySvc.ProjectService, auditService librarySvc.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		projectService: projectService,
		auditService:   auditService,
		logger:         logger,
	}
}

// GetStats returns the folder statistics report computed from live script counts
// GET /api/projects/{id}/stats
func (h *AuditHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	// Ownership check; the audit itself is not user scoped
	if _, err := h.projectService.GetProject(r.Context(), projectID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	report, err := h.auditService.AuditProject(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}

// Reconcile overwrites cached counters with live counts. The body is optional.
// POST /api/projects/{id}/reconcile
func (h *AuditHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var opts librarySvc.ReconcileOptions
	if err := httputil.ParseJSON(w, r, &opts); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.projectService.GetProject(r.Context(), projectID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.auditService.Reconcile(r.Context(), projectID, opts)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("reconcile requested over http",
		"project_id", projectID,
		"user_id", httputil.GetUserID(r),
		"purge_orphans", opts.PurgeOrphans,
	)

	httputil.RespondJSON(w, http.StatusOK, result)
}
