package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// upgradeURL is where denied content responses point the client.
const upgradeURL = "/api/plans"

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondLocked is the denial shape for subscription-gated content.
func respondLocked(w http.ResponseWriter, required string) {
	respondJSON(w, http.StatusForbidden, map[string]string{
		"error":                "subscription required",
		"requiredSubscription": required,
		"upgradeUrl":           upgradeURL,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
