// Package httpx: общие для HTTP-адаптеров middleware и JSON-хелперы.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const MaxRequestBodySize = 1 << 20 // 1MB

// ErrEmptyBody: тело запроса отсутствует
var ErrEmptyBody = errors.New("empty request body")

// ErrorResponse: стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ReadJSON декодирует ровно один JSON-объект без неизвестных полей
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
