package proxy

import (
	"encoding/json"
	"net/http"
)

// InternalErrorMessage is the only message a client sees for unexpected failures.
const InternalErrorMessage = "Internal server error"

// Envelope is the JSON shape of every response the gateway produces itself.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes payload as JSON with the given status.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"success":false,"message":"` + InternalErrorMessage + `"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Error writes {success:false, message}.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Envelope{Success: false, Message: message})
}

// Success writes {success:true, message?, data?} with status 200.
func Success(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}
