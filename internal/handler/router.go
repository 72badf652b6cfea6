package handler

import (
	"net/http"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Health  *HealthHandler
	Project *ProjectHandler
	Folder  *FolderHandler
	Script  *ScriptHandler
	Audit   *AuditHandler
}

// RegisterRoutes adds the API routes to mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Project routes
	mux.HandleFunc("GET /api/projects", h.Project.ListProjects)
	mux.HandleFunc("POST /api/projects", h.Project.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.Project.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", h.Project.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Project.DeleteProject)

	// Folder routes (folders live inside the project document)
	mux.HandleFunc("GET /api/projects/{id}/folders", h.Folder.ListFolders)
	mux.HandleFunc("POST /api/projects/{id}/folders", h.Folder.CreateFolder)
	mux.HandleFunc("PATCH /api/projects/{id}/folders/{folderId}", h.Folder.RenameFolder)
	mux.HandleFunc("DELETE /api/projects/{id}/folders/{folderId}", h.Folder.DeleteFolder)

	// Statistics and repair
	mux.HandleFunc("GET /api/projects/{id}/stats", h.Audit.GetStats)
	mux.HandleFunc("POST /api/projects/{id}/reconcile", h.Audit.Reconcile)

	// Script routes
	mux.HandleFunc("GET /api/projects/{id}/scripts", h.Script.ListScripts)
	mux.HandleFunc("POST /api/projects/{id}/scripts", h.Script.CreateScript)
	mux.HandleFunc("GET /api/scripts/{id}", h.Script.GetScript)
	mux.HandleFunc("PATCH /api/scripts/{id}", h.Script.UpdateScript)
	mux.HandleFunc("DELETE /api/scripts/{id}", h.Script.DeleteScript)
	mux.HandleFunc("PUT /api/scripts/{id}/content", h.Script.UpdateContent)
	mux.HandleFunc("GET /api/scripts/{id}/versions", h.Script.ListVersions)
	mux.HandleFunc("POST /api/scripts/{id}/revert", h.Script.RevertScript)
	mux.HandleFunc("POST /api/scripts/{id}/move", h.Script.MoveScript)
}
