package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-ordercloud/apierror"
)

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeAPIError writes an error document in the API's Errors format.
func writeAPIError(w http.ResponseWriter, statusCode int, errorCode, message string, data any) {
	detail := apierror.Detail{ErrorCode: errorCode, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			detail.Data = raw
		}
	}
	writeJSON(w, statusCode, map[string][]apierror.Detail{"Errors": {detail}})
}

func writeNotFound(w http.ResponseWriter, objectType, objectID string) {
	writeAPIError(w, http.StatusNotFound, apierror.NotFoundCode, "Object not found.",
		apierror.NotFoundData{ObjectType: objectType, ObjectID: objectID})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
