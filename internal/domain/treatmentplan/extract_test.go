package treatmentplan

import (
	"encoding/json"
	"reflect"
	"testing"
)

// fixtureDocument mirrors a stored general plan: mixed flags, a scoped
// procedure, bare-string teeth and structured entries with variants.
const fixtureDocument = `{
	"hygienic_periodontal": {
		"scaling": {"generalized": true},
		"prophylaxis": true,
		"oral_hygiene_instruction": true
	},
	"hygienic_dental": {
		"sealants": ["16", "26"],
		"caries_control": [{"tooth": "36", "surface": "occlusal"}]
	},
	"reevaluative": {
		"periodontal_reevaluation": true
	},
	"initial_corrective": {
		"restorations": ["36", {"tooth": "14", "variant": "ceramic"}],
		"extractions": ["48"]
	},
	"maintenance": {
		"periodic_recall": true
	},
	"experimental_phase": {"something": true}
}`

func fixturePlan(t *testing.T) *Plan {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(fixtureDocument), &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &Plan{Kind: KindGeneral, Document: doc}
}

func TestExtract_FixtureSequence(t *testing.T) {
	items := Extract(fixturePlan(t))

	expected := []Item{
		{Phase: PhaseHygienicPeriodontal, Type: TypeScaling, Specification: "generalized"},
		{Phase: PhaseHygienicPeriodontal, Type: TypeProphylaxis, Specification: ""},
		{Phase: PhaseHygienicPeriodontal, Type: TypeOralHygieneInstruction, Specification: ""},
		{Phase: PhaseHygienicDental, Type: TypeSealant, Specification: "tooth 16"},
		{Phase: PhaseHygienicDental, Type: TypeSealant, Specification: "tooth 26"},
		{Phase: PhaseHygienicDental, Type: TypeCariesControl, Specification: "tooth 36 (occlusal)"},
		{Phase: PhaseReevaluative, Type: TypePeriodontalReevaluation, Specification: ""},
		{Phase: PhaseInitialCorrective, Type: TypeRestoration, Specification: "tooth 36"},
		{Phase: PhaseInitialCorrective, Type: TypeRestoration, Specification: "tooth 14 (ceramic)"},
		{Phase: PhaseInitialCorrective, Type: TypeExtraction, Specification: "tooth 48"},
		{Phase: PhaseMaintenance, Type: TypePeriodicRecall, Specification: ""},
	}
	if !reflect.DeepEqual(items, expected) {
		t.Errorf("extraction mismatch:\n got %+v\nwant %+v", items, expected)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	p := fixturePlan(t)
	first := Extract(p)
	second := Extract(p)
	if !reflect.DeepEqual(first, second) {
		t.Error("two extractions of the same plan differ")
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	p := &Plan{Kind: KindGeneral}
	if items := Extract(p); len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
}

func TestExtract_FalseFlagsEmitNothing(t *testing.T) {
	p := &Plan{Kind: KindGeneral, Document: Document{
		Reevaluative: &ReevaluativePhase{PeriodontalReevaluation: false},
		Maintenance:  &MaintenancePhase{},
	}}
	if items := Extract(p); len(items) != 0 {
		t.Errorf("expected no items for false flags, got %+v", items)
	}
}

func TestExtract_SpecialKinds(t *testing.T) {
	cases := map[string]string{
		KindIntakeRecord:        TypeIntakeRecord,
		KindInitialReevaluation: TypeInitialReevaluation,
	}
	for kind, typ := range cases {
		// A stray document on a special plan is ignored.
		p := &Plan{Kind: kind, Document: Document{
			Maintenance: &MaintenancePhase{PeriodicRecall: true},
		}}
		items := Extract(p)
		if len(items) != 1 || items[0].Type != typ {
			t.Errorf("kind %s: expected single %s item, got %+v", kind, typ, items)
		}
	}
}

func TestToothEntry_Shorthand(t *testing.T) {
	var entries []ToothEntry
	if err := json.Unmarshal([]byte(`["36", {"tooth":"14","variant":"ceramic"}]`), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entries[0].Specification() != "tooth 36" {
		t.Errorf("bare string: got %q", entries[0].Specification())
	}
	if entries[1].Specification() != "tooth 14 (ceramic)" {
		t.Errorf("variant: got %q", entries[1].Specification())
	}
}

func TestIdentitySet(t *testing.T) {
	items := Extract(fixturePlan(t))
	set := IdentitySet(items)
	if len(set) != len(items) {
		t.Fatalf("identities not unique within the fixture: %d vs %d", len(set), len(items))
	}
	if _, ok := set[ItemIdentity{Type: TypeRestoration, Specification: "tooth 14 (ceramic)"}]; !ok {
		t.Error("expected ceramic restoration identity in set")
	}
}
