// Package adminhandlers exposes the operator surface: the external pause
// signal the trade engine honors on its execute paths.
package adminhandlers

import (
	"net/http"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/logging"
	"predex/middleware"
)

// PauseHandler handles POST /v0/admin/pause.
func PauseHandler(e *engine.Engine, adminKeyHash []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if httpErr := middleware.RequireAdmin(r, adminKeyHash); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		e.Pause()
		logging.Info("trading paused by operator")
		httperr.JSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"paused":  true,
		})
	}
}

// ResumeHandler handles POST /v0/admin/resume.
func ResumeHandler(e *engine.Engine, adminKeyHash []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if httpErr := middleware.RequireAdmin(r, adminKeyHash); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		e.Resume()
		logging.Info("trading resumed by operator")
		httperr.JSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"paused":  false,
		})
	}
}
