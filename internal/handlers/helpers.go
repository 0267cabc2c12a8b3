package handlers

import (
	"encoding/json"
	"net/http"
)

func authenticatedUser(r *http.Request) (int, bool) {
	userID, _ := r.Context().Value("user_id").(int)
	return userID, userID != 0
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"code":    code,
		"message": message,
	})
}
