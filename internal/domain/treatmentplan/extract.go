package treatmentplan

// Phase labels carried on extracted items for display grouping.
const (
	PhaseHygienicPeriodontal = "hygienic-periodontal"
	PhaseHygienicDental      = "hygienic-dental"
	PhaseReevaluative        = "re-evaluative"
	PhaseInitialCorrective   = "initial-corrective"
	PhaseFinalCorrective     = "final-corrective"
	PhaseMaintenance         = "maintenance"
)

// Item type strings. The mapping from document field to type is fixed:
// unknown document keys are dropped by decoding, never an error, so the
// schema can grow without breaking old servers.
const (
	TypeScaling                 = "scaling"
	TypeProphylaxis             = "prophylaxis"
	TypeFluorideApplication     = "fluoride_application"
	TypeOralHygieneInstruction  = "oral_hygiene_instruction"
	TypeSealant                 = "sealant"
	TypeCariesControl           = "caries_control"
	TypePeriodontalReevaluation = "periodontal_reevaluation"
	TypeCariesReevaluation      = "caries_reevaluation"
	TypeRestoration             = "restoration"
	TypeExtraction              = "extraction"
	TypeEndodontics             = "endodontics"
	TypeProsthesis              = "prosthesis"
	TypePeriodicRecall          = "periodic_recall"
	TypePeriodicProphylaxis     = "periodic_prophylaxis"

	// Synthetic types for the single-item plan kinds.
	TypeIntakeRecord        = "intake_record"
	TypeInitialReevaluation = "initial_reevaluation"
)

// Extract flattens a plan into its ordered item sequence. The walk
// order is fixed (phases in clinical order, fields in declaration
// order, tooth entries in document order), so two calls on the same
// plan yield the same sequence. Absent phases, false flags and empty
// lists emit nothing.
//
// The two single-item plan kinds skip the document walk entirely and
// yield one synthetic item.
func Extract(p *Plan) []Item {
	switch p.Kind {
	case KindIntakeRecord:
		return []Item{{Type: TypeIntakeRecord}}
	case KindInitialReevaluation:
		return []Item{{Type: TypeInitialReevaluation}}
	}

	var items []Item
	emit := func(phase, typ, spec string) {
		items = append(items, Item{Phase: phase, Type: typ, Specification: spec})
	}
	emitFlag := func(phase, typ string, set bool) {
		if set {
			emit(phase, typ, "")
		}
	}
	emitTeeth := func(phase, typ string, teeth []ToothEntry) {
		for _, t := range teeth {
			emit(phase, typ, t.Specification())
		}
	}

	doc := &p.Document

	if ph := doc.HygienicPeriodontal; ph != nil {
		if s := ph.Scaling; s != nil {
			if s.Generalized {
				emit(PhaseHygienicPeriodontal, TypeScaling, "generalized")
			}
			emitTeeth(PhaseHygienicPeriodontal, TypeScaling, s.Teeth)
		}
		emitFlag(PhaseHygienicPeriodontal, TypeProphylaxis, ph.Prophylaxis)
		emitFlag(PhaseHygienicPeriodontal, TypeFluorideApplication, ph.FluorideApplication)
		emitFlag(PhaseHygienicPeriodontal, TypeOralHygieneInstruction, ph.OralHygieneInstruction)
	}

	if ph := doc.HygienicDental; ph != nil {
		emitTeeth(PhaseHygienicDental, TypeSealant, ph.Sealants)
		emitTeeth(PhaseHygienicDental, TypeCariesControl, ph.CariesControl)
	}

	if ph := doc.Reevaluative; ph != nil {
		emitFlag(PhaseReevaluative, TypePeriodontalReevaluation, ph.PeriodontalReevaluation)
		emitFlag(PhaseReevaluative, TypeCariesReevaluation, ph.CariesReevaluation)
	}

	emitCorrective := func(phase string, ph *CorrectivePhase) {
		if ph == nil {
			return
		}
		emitTeeth(phase, TypeRestoration, ph.Restorations)
		emitTeeth(phase, TypeExtraction, ph.Extractions)
		emitTeeth(phase, TypeEndodontics, ph.Endodontics)
		emitTeeth(phase, TypeProsthesis, ph.Prostheses)
	}
	emitCorrective(PhaseInitialCorrective, doc.InitialCorrective)
	emitCorrective(PhaseFinalCorrective, doc.FinalCorrective)

	if ph := doc.Maintenance; ph != nil {
		emitFlag(PhaseMaintenance, TypePeriodicRecall, ph.PeriodicRecall)
		emitFlag(PhaseMaintenance, TypePeriodicProphylaxis, ph.PeriodicProphylaxis)
	}

	return items
}

// IdentitySet indexes the extracted items by identity, for membership
// checks when a report claims progress on an item.
func IdentitySet(items []Item) map[ItemIdentity]Item {
	set := make(map[ItemIdentity]Item, len(items))
	for _, it := range items {
		set[it.Identity()] = it
	}
	return set
}
