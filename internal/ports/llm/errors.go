package llm

import "fmt"

// UpstreamError: el proveedor respondió con status no-2xx.
// El status viaja estructurado para que el handler elija el mensaje sin parsear strings.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d", e.Provider, e.StatusCode)
}

// InvalidResponseError: 2xx a nivel transporte pero sin la estructura esperada.
type InvalidResponseError struct {
	Provider string
	Body     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("Invalid response from %s API", e.Provider)
}
