package treatmentplan

import (
	"encoding/json"
	"fmt"
)

// Document is the phase tree of a general plan. Each phase is optional;
// an absent phase contributes no items. The shapes are fixed per phase
// so leaf access never needs runtime type checks.
type Document struct {
	HygienicPeriodontal *PeriodontalPhase  `json:"hygienic_periodontal,omitempty"`
	HygienicDental      *DentalPhase       `json:"hygienic_dental,omitempty"`
	Reevaluative        *ReevaluativePhase `json:"reevaluative,omitempty"`
	InitialCorrective   *CorrectivePhase   `json:"initial_corrective,omitempty"`
	FinalCorrective     *CorrectivePhase   `json:"final_corrective,omitempty"`
	Maintenance         *MaintenancePhase  `json:"maintenance,omitempty"`
}

// PeriodontalPhase mixes a scoped procedure with plain flags.
type PeriodontalPhase struct {
	Scaling                *ScopedProcedure `json:"scaling,omitempty"`
	Prophylaxis            bool             `json:"prophylaxis,omitempty"`
	FluorideApplication    bool             `json:"fluoride_application,omitempty"`
	OralHygieneInstruction bool             `json:"oral_hygiene_instruction,omitempty"`
}

type DentalPhase struct {
	Sealants      []ToothEntry `json:"sealants,omitempty"`
	CariesControl []ToothEntry `json:"caries_control,omitempty"`
}

type ReevaluativePhase struct {
	PeriodontalReevaluation bool `json:"periodontal_reevaluation,omitempty"`
	CariesReevaluation      bool `json:"caries_reevaluation,omitempty"`
}

// CorrectivePhase is shared by the initial and final corrective stages.
type CorrectivePhase struct {
	Restorations []ToothEntry `json:"restorations,omitempty"`
	Extractions  []ToothEntry `json:"extractions,omitempty"`
	Endodontics  []ToothEntry `json:"endodontics,omitempty"`
	Prostheses   []ToothEntry `json:"prostheses,omitempty"`
}

type MaintenancePhase struct {
	PeriodicRecall      bool `json:"periodic_recall,omitempty"`
	PeriodicProphylaxis bool `json:"periodic_prophylaxis,omitempty"`
}

// ScopedProcedure is either generalized (whole mouth) or itemized per
// tooth. Generalized with an empty tooth list means whole mouth;
// itemized entries each become their own item.
type ScopedProcedure struct {
	Generalized bool         `json:"generalized,omitempty"`
	Teeth       []ToothEntry `json:"teeth,omitempty"`
}

// ToothEntry names one tooth, optionally with a surface or a material
// variant. In stored documents a bare string is shorthand for an entry
// with only the tooth number.
type ToothEntry struct {
	Tooth   string `json:"tooth"`
	Surface string `json:"surface,omitempty"`
	Variant string `json:"variant,omitempty"`
}

func (t *ToothEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var tooth string
		if err := json.Unmarshal(data, &tooth); err != nil {
			return err
		}
		*t = ToothEntry{Tooth: tooth}
		return nil
	}
	type alias ToothEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = ToothEntry(a)
	return nil
}

// Specification renders the item identity detail: "tooth 36",
// "tooth 14 (ceramic)", "tooth 21 (distal)". Variant wins over surface
// when both are set.
func (t ToothEntry) Specification() string {
	switch {
	case t.Variant != "":
		return fmt.Sprintf("tooth %s (%s)", t.Tooth, t.Variant)
	case t.Surface != "":
		return fmt.Sprintf("tooth %s (%s)", t.Tooth, t.Surface)
	default:
		return "tooth " + t.Tooth
	}
}
