package handlers

import "net/http"

// Health — публичная проверка доступности API (не путать с ops-эндпойнтами
// /livez и /healthz на сервисном порту).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
