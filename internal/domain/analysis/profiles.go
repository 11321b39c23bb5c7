package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vet-notes-ai/internal/ports/llm"
)

const notSpecified = "Belirtilmemiş"

var ErrUnknownProfile = errors.New("unknown analysis profile")

// Profile agrupa lo que variaba entre revisiones del handler:
// template del prompt, parámetros de muestreo, filtros de seguridad y action por defecto.
type Profile struct {
	Name          string
	DefaultAction string
	Sampling      llm.GenerationConfig
	Safety        []llm.SafetySetting

	render func(p PetInfo, notes string) string
}

// Prompt arma el texto que se manda al modelo.
func (p Profile) Prompt(pet PetInfo, notes string) string {
	return p.render(pet, notes)
}

const (
	ProfileBrief          = "brief"
	ProfileDiagnostic     = "diagnostic"
	ProfileDrugExtraction = "drug-extraction"
)

var blockMediumAndAbove = []llm.SafetySetting{
	{Category: llm.HarmCategoryHarassment, Threshold: llm.BlockMediumAndAbove},
	{Category: llm.HarmCategoryHateSpeech, Threshold: llm.BlockMediumAndAbove},
	{Category: llm.HarmCategorySexuallyExplicit, Threshold: llm.BlockMediumAndAbove},
	{Category: llm.HarmCategoryDangerousContent, Threshold: llm.BlockMediumAndAbove},
}

var profiles = map[string]Profile{
	ProfileBrief: {
		Name:          ProfileBrief,
		DefaultAction: "analyze",
		Sampling:      llm.GenerationConfig{Temperature: 0.7, MaxOutputTokens: 512, TopP: 0.8, TopK: 40},
		Safety:        blockMediumAndAbove,
		render:        briefPrompt,
	},
	ProfileDiagnostic: {
		Name:          ProfileDiagnostic,
		DefaultAction: "diagnose",
		Sampling:      llm.GenerationConfig{Temperature: 0.7, MaxOutputTokens: 800, TopP: 0.95, TopK: 40},
		Safety:        blockMediumAndAbove,
		render:        diagnosticPrompt,
	},
	ProfileDrugExtraction: {
		Name:          ProfileDrugExtraction,
		DefaultAction: "extract-drugs",
		Sampling:      llm.GenerationConfig{Temperature: 0.7, MaxOutputTokens: 200, TopP: 0.8, TopK: 40},
		// Los nombres de fármacos y dosis disparan el filtro médico.
		Safety: []llm.SafetySetting{
			{Category: llm.HarmCategoryMedical, Threshold: llm.BlockNone},
		},
		render: drugExtractionPrompt,
	},
}

// ProfileByName busca un perfil (case-insensitive). "" => brief.
func ProfileByName(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ProfileBrief
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

func ProfileNames() []string {
	out := make([]string, 0, len(profiles))
	for k := range profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func briefPrompt(p PetInfo, notes string) string {
	return fmt.Sprintf(`Sen veteriner hekimsin. Bu hasta hakkında kısa analiz yap:

HASTA: %s (%s, %s)
Yaş: %s, Ağırlık: %skg

GÖZLEMLER:
%s

Lütfen kısa analiz yap (maksimum 200 kelime):

🔍 BULGULAR:
[Önemli bulgular]

📊 DEĞERLENDIRME:
[Genel durum değerlendirmesi]

💡 ÖNERİLER:
[Kısa öneriler]

UYARI: Bu eğitim amaçlıdır, kesin teşhis değildir.`,
		p.Name, p.Species, orDefault(p.Breed),
		orDefault(p.Age.String()), orDefault(p.Weight.String()),
		notes,
	)
}

func diagnosticPrompt(p PetInfo, notes string) string {
	return fmt.Sprintf(`Sen deneyimli bir veteriner hekimsin. Aşağıdaki hasta bilgileri ve klinik gözlemlere dayanarak detaylı bir değerlendirme yap.

HASTA BİLGİLERİ:
- Adı: %s
- Tür: %s
- Irk: %s
- Yaş: %s
- Ağırlık: %skg

KLİNİK GÖZLEMLER:
%s

Lütfen aşağıdaki başlıklar altında yanıt ver:

🔍 BULGULAR:
[Notlardaki önemli klinik bulgular]

🩺 OLASI TANILAR:
[Olasılık sırasına göre ayırıcı tanılar]

🧪 ÖNERİLEN TETKİKLER:
[Tanıyı netleştirecek testler]

💊 TEDAVİ ÖNERİLERİ:
[Genel tedavi yaklaşımı]

📅 TAKİP:
[Kontrol ve izlem önerileri]

UYARI: Bu değerlendirme eğitim amaçlıdır, kesin teşhis yerine geçmez.`,
		p.Name, p.Species, orDefault(p.Breed),
		orDefault(p.Age.String()), orDefault(p.Weight.String()),
		notes,
	)
}

func drugExtractionPrompt(p PetInfo, notes string) string {
	return fmt.Sprintf(`Aşağıdaki veteriner notlarında geçen ilaç isimlerini listele.

HASTA: %s (%s)

NOTLAR:
%s

Sadece ilaç isimlerini, her satıra bir tane olacak şekilde yaz. İlaç yoksa "İlaç bulunamadı" yaz.`,
		p.Name, p.Species,
		notes,
	)
}
