package ingest

import (
	"testing"

	"github.com/cmcmaster/rheum-biologics/internal/classify"
	"github.com/cmcmaster/rheum-biologics/internal/model"
)

var testSchedule = model.Schedule{Code: "2025-07", Year: 2025, Month: "JULY"}

func defaultClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	cls, err := classify.New(nil, nil)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	return cls
}

// baseTables returns a minimal joined fixture: one adalimumab item with one
// restriction resolving to rheumatoid arthritis.
func baseTables() *model.RawTables {
	return &model.RawTables{
		Items: model.Table{
			{
				"drug_name":                 "Adalimumab",
				"pbs_code":                  "1234A",
				"brand_name":                "Humira",
				"li_form":                   "40 mg injection",
				"schedule_form":             "Injection 40 mg in 0.4 mL",
				"manner_of_administration":  "Injection",
				"program_code":              "HB",
				"maximum_prescribable_pack": "1",
				"maximum_quantity_units":    "2",
				"number_of_repeats":         "5",
			},
		},
		ItemRestrictions: model.Table{
			{"pbs_code": "1234A", "res_code": "R1"},
		},
		Restrictions: model.Table{
			{
				"res_code":           "R1",
				"authority_method":   "STREAMLINED",
				"treatment_of_code":  "T1",
				"treatment_phase":    "INITIAL",
				"schedule_html_text": "<p>Apply through the online portal.</p>",
			},
		},
		RestrictionPrescribingTexts: model.Table{
			{"res_code": "R1", "prescribing_text_id": "P1"},
		},
		Indications: model.Table{
			{"prescribing_text_id": "P1", "condition": "Severe active rheumatoid arthritis"},
		},
	}
}

func TestBuildCombinationsScenario(t *testing.T) {
	got := BuildCombinations(baseTables(), testSchedule, defaultClassifier(t))
	if len(got) != 1 {
		t.Fatalf("expected 1 combination, got %d", len(got))
	}

	c := got[0]
	if c.Drug != "Adalimumab" {
		t.Errorf("drug = %q", c.Drug)
	}
	if c.Brand != "Humira" {
		t.Errorf("brand = %q", c.Brand)
	}
	if c.Indication != "Rheumatoid Arthritis" {
		t.Errorf("indication = %q", c.Indication)
	}
	if c.TreatmentPhase == nil || *c.TreatmentPhase != "Initial" {
		t.Errorf("treatment_phase = %v", c.TreatmentPhase)
	}
	if c.AuthorityMethod == nil || *c.AuthorityMethod != "STREAMLINED" {
		t.Errorf("authority_method = %v", c.AuthorityMethod)
	}
	if c.StreamlinedCode == nil || *c.StreamlinedCode != "T1" {
		t.Errorf("streamlined_code = %v", c.StreamlinedCode)
	}
	if c.OnlineApplication == nil || !*c.OnlineApplication {
		t.Errorf("online_application = %v", c.OnlineApplication)
	}
	if c.HospitalType == nil || *c.HospitalType != "Public" {
		t.Errorf("hospital_type = %v", c.HospitalType)
	}
	if c.Formulation != "40 mg injection" {
		t.Errorf("formulation = %q, want li_form preferred", c.Formulation)
	}
	if c.MaximumPrescribablePack == nil || *c.MaximumPrescribablePack != 1 {
		t.Errorf("maximum_prescribable_pack = %v", c.MaximumPrescribablePack)
	}
	if c.ScheduleCode != "2025-07" || c.ScheduleYear != 2025 || c.ScheduleMonth != "JULY" {
		t.Errorf("schedule fields = %s/%d/%s", c.ScheduleCode, c.ScheduleYear, c.ScheduleMonth)
	}
}

// Non-biologic items never produce combinations, no matter how well linked.
func TestBuildCombinationsDrugFilter(t *testing.T) {
	tables := baseTables()
	tables.Items[0]["drug_name"] = "Methotrexate"

	if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
		t.Errorf("expected no combinations for non-biologic drug, got %d", len(got))
	}
}

// The indication follows the first matching prescribing text in relationship
// row order, not the "best" match.
func TestBuildCombinationsIndicationFirstMatch(t *testing.T) {
	tables := baseTables()
	tables.RestrictionPrescribingTexts = model.Table{
		{"res_code": "R1", "prescribing_text_id": "P2"},
		{"res_code": "R1", "prescribing_text_id": "P1"},
	}
	tables.Indications = model.Table{
		{"prescribing_text_id": "P1", "condition": "Severe active rheumatoid arthritis"},
		{"prescribing_text_id": "P2", "condition": "Severe psoriatic arthritis"},
	}

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 1 {
		t.Fatalf("expected 1 combination, got %d", len(got))
	}
	if got[0].Indication != "Psoriatic Arthritis" {
		t.Errorf("indication = %q, want Psoriatic Arthritis (row order wins)", got[0].Indication)
	}
}

// A non-matching text before a matching one must not end the search.
func TestBuildCombinationsSkipsNonMatchingTexts(t *testing.T) {
	tables := baseTables()
	tables.RestrictionPrescribingTexts = model.Table{
		{"res_code": "R1", "prescribing_text_id": "P9"},
		{"res_code": "R1", "prescribing_text_id": "P1"},
	}
	tables.Indications = append(tables.Indications,
		model.Row{"prescribing_text_id": "P9", "condition": "Chronic plaque psoriasis"})

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 1 || got[0].Indication != "Rheumatoid Arthritis" {
		t.Fatalf("expected fallthrough to matching text, got %+v", got)
	}
}

func TestBuildCombinationsOnlineApplicationTriState(t *testing.T) {
	tests := []struct {
		name string
		note string
		want *bool
	}{
		{"null note", "", nil},
		{"contains postal address", "Mail to GPO Box HOBART TAS 7001", boolPtr(false)},
		{"no postal address", "Use the online portal", boolPtr(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := baseTables()
			tables.Restrictions[0]["schedule_html_text"] = tt.note

			got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
			if len(got) != 1 {
				t.Fatalf("expected 1 combination, got %d", len(got))
			}
			oa := got[0].OnlineApplication
			if (oa == nil) != (tt.want == nil) {
				t.Fatalf("online_application = %v, want %v", oa, tt.want)
			}
			if oa != nil && *oa != *tt.want {
				t.Errorf("online_application = %v, want %v", *oa, *tt.want)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

// The streamlined code only survives under the STREAMLINED authority method,
// even when the treatment-of column is populated.
func TestBuildCombinationsStreamlinedGating(t *testing.T) {
	for _, method := range []string{"AUTHORITY REQUIRED", "authority required", ""} {
		tables := baseTables()
		tables.Restrictions[0]["authority_method"] = method

		got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
		if len(got) != 1 {
			t.Fatalf("method %q: expected 1 combination, got %d", method, len(got))
		}
		if got[0].StreamlinedCode != nil {
			t.Errorf("method %q: streamlined_code = %q, want nil", method, *got[0].StreamlinedCode)
		}
		if method == "" && got[0].AuthorityMethod != nil {
			t.Errorf("blank method: authority_method = %q, want nil", *got[0].AuthorityMethod)
		}
	}
}

// One item code with three brands fans out into three combinations that
// differ only in brand.
func TestBuildCombinationsBrandFanOut(t *testing.T) {
	tables := baseTables()
	second := model.Row{}
	for k, v := range tables.Items[0] {
		second[k] = v
	}
	second["brand_name"] = "Amgevita"
	third := model.Row{}
	for k, v := range tables.Items[0] {
		third[k] = v
	}
	third["brand_name"] = "Hadlima"
	tables.Items = append(tables.Items, second, third)

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 3 {
		t.Fatalf("expected 3 combinations, got %d", len(got))
	}

	wantBrands := []string{"Humira", "Amgevita", "Hadlima"}
	for i, c := range got {
		if c.Brand != wantBrands[i] {
			t.Errorf("combination %d brand = %q, want %q", i, c.Brand, wantBrands[i])
		}
		if c.PBSCode != "1234A" || c.Drug != "Adalimumab" || c.Indication != "Rheumatoid Arthritis" {
			t.Errorf("combination %d differs beyond brand: %+v", i, c)
		}
	}
}

// An item linked to several restrictions yields one combination per
// restriction, potentially with different indications.
func TestBuildCombinationsMultipleRestrictions(t *testing.T) {
	tables := baseTables()
	tables.ItemRestrictions = append(tables.ItemRestrictions,
		model.Row{"pbs_code": "1234A", "res_code": "R2"})
	tables.Restrictions = append(tables.Restrictions, model.Row{
		"res_code":         "R2",
		"authority_method": "WRITTEN",
		"treatment_phase":  "CONTINUING",
	})
	tables.RestrictionPrescribingTexts = append(tables.RestrictionPrescribingTexts,
		model.Row{"res_code": "R2", "prescribing_text_id": "P2"})
	tables.Indications = append(tables.Indications,
		model.Row{"prescribing_text_id": "P2", "condition": "Active psoriatic arthritis"})

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 2 {
		t.Fatalf("expected 2 combinations, got %d", len(got))
	}
	if got[0].Indication != "Rheumatoid Arthritis" || got[1].Indication != "Psoriatic Arthritis" {
		t.Errorf("indications = %q, %q", got[0].Indication, got[1].Indication)
	}
	if got[1].OnlineApplication != nil {
		t.Errorf("R2 has no schedule note, online_application = %v, want nil", got[1].OnlineApplication)
	}
}

func TestBuildCombinationsRowLevelGaps(t *testing.T) {
	t.Run("item without brand", func(t *testing.T) {
		tables := baseTables()
		tables.Items[0]["brand_name"] = "null"
		if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
			t.Errorf("expected no combinations for brand-less item, got %d", len(got))
		}
	})

	t.Run("item without restriction links", func(t *testing.T) {
		tables := baseTables()
		tables.ItemRestrictions = nil
		if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
			t.Errorf("expected no combinations without restriction links, got %d", len(got))
		}
	})

	t.Run("restriction without prescribing texts", func(t *testing.T) {
		tables := baseTables()
		tables.RestrictionPrescribingTexts = nil
		if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
			t.Errorf("expected no combinations without prescribing texts, got %d", len(got))
		}
	})

	t.Run("no matching indication", func(t *testing.T) {
		tables := baseTables()
		tables.Indications[0]["condition"] = "Chronic plaque psoriasis"
		if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
			t.Errorf("expected no combinations without disease match, got %d", len(got))
		}
	})

	t.Run("dangling restriction code", func(t *testing.T) {
		tables := baseTables()
		tables.Restrictions = nil
		if got := BuildCombinations(tables, testSchedule, defaultClassifier(t)); len(got) != 0 {
			t.Errorf("expected no combinations for dangling res_code, got %d", len(got))
		}
	})
}

// The alternate indication key column is honored when the primary is null.
func TestBuildCombinationsAlternateIndicationKey(t *testing.T) {
	tables := baseTables()
	tables.Indications = model.Table{
		{"indication_prescribing_txt_id": "P1", "condition": "Severe active rheumatoid arthritis"},
	}

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 1 || got[0].Indication != "Rheumatoid Arthritis" {
		t.Fatalf("expected match via alternate key, got %+v", got)
	}
}

// Later item rows overwrite scalar fields for the same item code.
func TestBuildCombinationsLastWriteWinsScalars(t *testing.T) {
	tables := baseTables()
	second := model.Row{}
	for k, v := range tables.Items[0] {
		second[k] = v
	}
	second["brand_name"] = "Amgevita"
	second["number_of_repeats"] = "3"
	tables.Items = append(tables.Items, second)

	got := BuildCombinations(tables, testSchedule, defaultClassifier(t))
	if len(got) != 2 {
		t.Fatalf("expected 2 combinations, got %d", len(got))
	}
	for _, c := range got {
		if c.NumberOfRepeats == nil || *c.NumberOfRepeats != 3 {
			t.Errorf("number_of_repeats = %v, want 3 (last row wins)", c.NumberOfRepeats)
		}
	}
}
