package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PetInfo son los datos básicos de la mascota enviados por el front.
// Solo se valida que el objeto venga; los campos se interpolan tal cual.
type PetInfo struct {
	Name    string     `json:"name"`
	Species string     `json:"species"`
	Breed   string     `json:"breed"`
	Age     LooseValue `json:"age"`
	Weight  LooseValue `json:"weight"`
}

// AnalysisRequest es el body del POST.
// PetInfo es puntero: nil = faltante. Ver UnmarshalJSON para qué cuenta como faltante.
type AnalysisRequest struct {
	Notes   string   `json:"notes"`
	PetInfo *PetInfo `json:"petInfo"`
	Action  string   `json:"action"`
}

// UnmarshalJSON trata null, false, 0 y "" como ausentes en notes y petInfo,
// así esos bodies terminan en "Missing required fields" y no en error de formato.
func (r *AnalysisRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Notes   json.RawMessage `json:"notes"`
		PetInfo json.RawMessage `json:"petInfo"`
		Action  string          `json:"action"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = AnalysisRequest{Action: raw.Action}

	if !isFalsy(raw.Notes) {
		notes, err := scalarText(raw.Notes)
		if err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		r.Notes = notes
	}

	if !isFalsy(raw.PetInfo) {
		pet := &PetInfo{}
		if bytes.TrimSpace(raw.PetInfo)[0] == '{' {
			if err := json.Unmarshal(raw.PetInfo, pet); err != nil {
				return fmt.Errorf("petInfo: %w", err)
			}
		}
		// Otro valor no vacío (true, "x", []) cuenta como presente pero sin datos.
		r.PetInfo = pet
	}
	return nil
}

// isFalsy: ausente, null, false, 0 o "".
func isFalsy(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return true
	}
	switch string(b) {
	case "null", "false", `""`:
		return true
	}
	if b[0] == '-' || (b[0] >= '0' && b[0] <= '9') {
		f, err := json.Number(b).Float64()
		return err == nil && f == 0
	}
	return false
}

// scalarText devuelve strings tal cual y números/booleanos como su literal.
func scalarText(b json.RawMessage) (string, error) {
	b = bytes.TrimSpace(b)
	switch b[0] {
	case '"':
		var s string
		err := json.Unmarshal(b, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected string, got %s", string(b))
	}
	return string(b), nil
}

// Result es la respuesta exitosa.
type Result struct {
	Success   bool   `json:"success"`
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`
	PetName   string `json:"petName"`
	Action    string `json:"action"`

	// ID de correlación (header X-Analysis-ID + logs), no va en el body.
	ID string `json:"-"`
}

// LooseValue acepta string, número o booleano ("3", 3, 4.5) y lo guarda como texto.
// 0, false y null quedan vacíos: se muestran como no especificados.
type LooseValue string

func (v *LooseValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isFalsy(b) {
		*v = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = LooseValue(s)
		return nil
	}
	if string(b) == "true" {
		*v = "true"
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*v = LooseValue(n.String())
	return nil
}

func (v LooseValue) String() string { return string(v) }
