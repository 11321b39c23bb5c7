package llm

import "context"

// Generator es el colaborador externo: recibe prompt + configuración de muestreo
// y devuelve el texto generado o un error clasificado (UpstreamError / InvalidResponseError).
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Provider nombre legible ("Gemini", "OpenAI"), usado en errores y métricas.
	Provider() string
}

type Request struct {
	Prompt string
	Config GenerationConfig
	Safety []SafetySetting
}

type GenerationConfig struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
}

type SafetySetting struct {
	Category  HarmCategory
	Threshold HarmThreshold
}

type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmCategoryMedical          HarmCategory = "HARM_CATEGORY_MEDICAL"
)

type HarmThreshold string

const (
	BlockNone           HarmThreshold = "BLOCK_NONE"
	BlockOnlyHigh       HarmThreshold = "BLOCK_ONLY_HIGH"
	BlockMediumAndAbove HarmThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockLowAndAbove    HarmThreshold = "BLOCK_LOW_AND_ABOVE"
)
