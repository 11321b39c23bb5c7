package analysis

import (
	"errors"
	"net/http"

	"vet-notes-ai/internal/ports/llm"
)

const missingFieldsMessage = "Missing required fields: notes, petInfo"

var (
	ErrMissingFields = &ValidationError{Message: missingFieldsMessage}
)

// ValidationError: faltan campos obligatorios. Nunca llega al proveedor.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MalformedRequestError: el body no es JSON válido (o no tiene la forma esperada).
type MalformedRequestError struct {
	Err error
}

func (e *MalformedRequestError) Error() string {
	if e.Err == nil {
		return "malformed request body"
	}
	return "malformed request body: " + e.Err.Error()
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

// Mensajes para el usuario final (el front está en turco).
const (
	MsgAnalysisFailed = "AI analizi sırasında hata oluştu"
	MsgRateLimited    = "Çok fazla istek gönderildi, lütfen bekleyin"
	MsgAccessDenied   = "API erişim hatası"
	MsgBadRequest     = "İstek formatında hata"

	fallbackAnalysis = "Analiz yapılamadı"
)

// UserMessage elige el mensaje localizado según el status del upstream.
// Cualquier otro error (respuesta inválida, red, timeout) => mensaje genérico.
func UserMessage(err error) string {
	var mr *MalformedRequestError
	if errors.As(err, &mr) {
		return MsgBadRequest
	}

	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		return MsgAnalysisFailed
	}

	switch ue.StatusCode {
	case http.StatusTooManyRequests:
		return MsgRateLimited
	case http.StatusForbidden:
		return MsgAccessDenied
	case http.StatusBadRequest:
		return MsgBadRequest
	default:
		return MsgAnalysisFailed
	}
}
