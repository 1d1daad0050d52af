package app

import (
	"aline/domain/core"
	"aline/domain/frame"
)

// StudyDefinition binds a declarative schema to the causal roles of
// its columns: one exposure, one outcome, and the covariate set that
// carries the entire adjustment burden through the weights.
type StudyDefinition struct {
	Schema     frame.Schema
	Exposure   core.VariableKey
	Outcome    core.VariableKey
	Covariates []core.VariableKey
}

// Keep returns the projection list for schema preparation: exposure,
// covariates, outcome, in that order.
func (d StudyDefinition) Keep() []core.VariableKey {
	keep := make([]core.VariableKey, 0, len(d.Covariates)+2)
	keep = append(keep, d.Exposure)
	keep = append(keep, d.Covariates...)
	keep = append(keep, d.Outcome)
	return keep
}

// ArterialLineStudy is the indwelling-arterial-catheter study: does
// catheter placement change 28-day mortality, adjusting for severity,
// demographics, admission timing, comorbidities, first-day vitals and
// labs. The surgical-service indicator is derived from the raw ICU
// service unit rather than entered as a full categorical term.
func ArterialLineStudy() StudyDefinition {
	continuous := []core.VariableKey{
		"age", "weight_first", "sofa_first",
		"map_1st", "hr_1st", "temp_1st", "spo2_1st",
		"wbc_first", "hgb_first", "platelet_first",
		"sodium_first", "potassium_first", "tco2_first",
		"bun_first", "creatinine_first",
	}
	flags := []core.VariableKey{
		"gender_num", "weekend_adm_flg", "night_adm_flg",
		"chf_flg", "afib_flg", "renal_flg", "liver_flg", "copd_flg",
		"cad_flg", "stroke_flg", "mal_flg", "resp_flg",
	}

	columns := []frame.ColumnSpec{
		{Key: "aline_flg", Kind: frame.KindBinary},
		{Key: "day_28_flg", Kind: frame.KindBinary},
		{Key: "service_unit", Kind: frame.KindCategorical, Levels: []string{"MICU", "SICU", "FICU", "SURG"}},
	}
	for _, key := range continuous {
		columns = append(columns, frame.ColumnSpec{Key: key, Kind: frame.KindContinuous})
	}
	for _, key := range flags {
		columns = append(columns, frame.ColumnSpec{Key: key, Kind: frame.KindBinary})
	}

	covariates := append([]core.VariableKey{}, continuous...)
	covariates = append(covariates, flags...)
	covariates = append(covariates, "surgical_service")

	return StudyDefinition{
		Schema: frame.Schema{
			Columns: columns,
			Derived: []frame.DerivedFlag{
				{Key: "surgical_service", From: "service_unit", Level: "SURG"},
			},
		},
		Exposure:   "aline_flg",
		Outcome:    "day_28_flg",
		Covariates: covariates,
	}
}
