// Package ingest builds flattened biologics combinations from the raw PBS
// tables and orchestrates the monthly ingestion run.
package ingest

import (
	"strings"

	"github.com/cmcmaster/rheum-biologics/internal/classify"
	"github.com/cmcmaster/rheum-biologics/internal/model"
	"github.com/cmcmaster/rheum-biologics/internal/normalize"
)

// mailApplicationAddress is the postal address printed in restriction notes
// that must be applied for in writing. Its absence from a non-null note is
// the signal that the authority can be applied for online.
const mailApplicationAddress = "HOBART TAS 7001"

// itemAggregate folds the raw item rows sharing a pbs_code. Scalar fields
// take the last seen value; brands accumulate in first-seen order.
type itemAggregate struct {
	drug                   string
	liForm                 string
	scheduleForm           string
	mannerOfAdministration string
	maximumPack            *int
	maximumQuantity        *int
	repeats                *int
	hospitalType           *string
	brands                 *orderedSet
}

// BuildCombinations joins the seven raw tables into one combination per
// (item, restriction, brand) whose drug passes the biologic filter and whose
// restriction resolves to a configured rheumatic disease. Malformed rows are
// skipped, never fatal: the upstream dataset always carries gaps.
func BuildCombinations(tables *model.RawTables, sched model.Schedule, cls *classify.Classifier) []model.Combination {
	restrictions := make(map[string]model.Row)
	for _, row := range tables.Restrictions {
		if code := normalize.Nullable(row["res_code"]); code != nil {
			restrictions[*code] = row
		}
	}

	// Indication rows key off one of two alternate id columns; first
	// non-null wins, later rows overwrite earlier ones for the same id.
	indications := make(map[string]model.Row)
	for _, row := range tables.Indications {
		key := normalize.Nullable(row["prescribing_text_id"])
		if key == nil {
			key = normalize.Nullable(row["indication_prescribing_txt_id"])
		}
		if key != nil {
			indications[*key] = row
		}
	}

	textsByRestriction := make(map[string]*orderedSet)
	for _, row := range tables.RestrictionPrescribingTexts {
		resCode := normalize.Nullable(row["res_code"])
		textID := normalize.Nullable(row["prescribing_text_id"])
		if resCode == nil || textID == nil {
			continue
		}
		set := textsByRestriction[*resCode]
		if set == nil {
			set = newOrderedSet()
			textsByRestriction[*resCode] = set
		}
		set.Add(*textID)
	}

	restrictionsByItem := make(map[string]*orderedSet)
	for _, row := range tables.ItemRestrictions {
		pbsCode := normalize.Nullable(row["pbs_code"])
		resCode := normalize.Nullable(row["res_code"])
		if pbsCode == nil || resCode == nil {
			continue
		}
		set := restrictionsByItem[*pbsCode]
		if set == nil {
			set = newOrderedSet()
			restrictionsByItem[*pbsCode] = set
		}
		set.Add(*resCode)
	}

	// Fold item rows into per-code aggregates. Items without a biologic
	// drug name, a pbs_code, or a brand contribute nothing.
	items := make(map[string]*itemAggregate)
	var itemOrder []string
	for _, row := range tables.Items {
		drug := normalize.Nullable(row["drug_name"])
		if drug == nil || !cls.IsBiologic(*drug) {
			continue
		}
		pbsCode := normalize.Nullable(row["pbs_code"])
		brand := normalize.Nullable(row["brand_name"])
		if pbsCode == nil || brand == nil {
			continue
		}

		agg := items[*pbsCode]
		if agg == nil {
			agg = &itemAggregate{brands: newOrderedSet()}
			items[*pbsCode] = agg
			itemOrder = append(itemOrder, *pbsCode)
		}

		agg.drug = normalize.TitleCase(*drug)
		agg.liForm = derefOrEmpty(normalize.Nullable(row["li_form"]))
		agg.scheduleForm = derefOrEmpty(normalize.Nullable(row["schedule_form"]))
		agg.mannerOfAdministration = derefOrEmpty(normalize.Nullable(row["manner_of_administration"]))
		agg.maximumPack = normalize.Integer(row["maximum_prescribable_pack"])
		agg.maximumQuantity = normalize.Integer(row["maximum_quantity_units"])
		agg.repeats = normalize.Integer(row["number_of_repeats"])
		agg.hospitalType = normalize.HospitalType(row["program_code"])
		agg.brands.Add(*brand)
	}

	var combinations []model.Combination
	for _, pbsCode := range itemOrder {
		agg := items[pbsCode]

		linked := restrictionsByItem[pbsCode]
		if linked == nil {
			continue
		}

		for _, resCode := range linked.Values() {
			restriction, ok := restrictions[resCode]
			if !ok {
				continue
			}

			textIDs := textsByRestriction[resCode]
			if textIDs == nil || textIDs.Len() == 0 {
				continue
			}

			// First prescribing text whose condition matches a disease
			// decides the indication; relationship row order is the
			// tie-break.
			var indication *string
			for _, textID := range textIDs.Values() {
				row, ok := indications[textID]
				if !ok {
					continue
				}
				if match := cls.MatchDisease(row["condition"]); match != nil {
					indication = match
					break
				}
			}
			if indication == nil {
				continue
			}

			authorityMethod := normalize.AuthorityCode(restriction["authority_method"])

			// The treatment-of code only means anything under the
			// streamlined authority method.
			var streamlinedCode *string
			if authorityMethod != nil && *authorityMethod == "STREAMLINED" {
				streamlinedCode = normalize.Nullable(restriction["treatment_of_code"])
			}

			var onlineApplication *bool
			if note := normalize.Nullable(restriction["schedule_html_text"]); note != nil {
				online := !strings.Contains(*note, mailApplicationAddress)
				onlineApplication = &online
			}

			var treatmentPhase *string
			if phase := normalize.Nullable(restriction["treatment_phase"]); phase != nil {
				p := normalize.TitleCase(strings.ToLower(*phase))
				treatmentPhase = &p
			}

			formulation := agg.liForm
			if formulation == "" {
				formulation = agg.scheduleForm
			}

			for _, brand := range agg.brands.Values() {
				combinations = append(combinations, model.Combination{
					PBSCode:                 pbsCode,
					Drug:                    agg.drug,
					Brand:                   brand,
					Formulation:             formulation,
					Indication:              *indication,
					TreatmentPhase:          treatmentPhase,
					StreamlinedCode:         streamlinedCode,
					AuthorityMethod:         authorityMethod,
					OnlineApplication:       onlineApplication,
					HospitalType:            agg.hospitalType,
					MaximumPrescribablePack: agg.maximumPack,
					MaximumQuantityUnits:    agg.maximumQuantity,
					NumberOfRepeats:         agg.repeats,
					ScheduleCode:            sched.Code,
					ScheduleYear:            sched.Year,
					ScheduleMonth:           sched.Month,
				})
			}
		}
	}

	return combinations
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
