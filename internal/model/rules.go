package model

import "github.com/Skufu/cardiorisk/internal/align"

// RulesThreshold is the score at which Rules flags high risk.
const RulesThreshold = 3

// Rules is the fallback risk screen used when no classifier is available.
// It scores raw answers and produces no probabilities.
type Rules struct{}

// Score sums the risk factors present in rec.
func (Rules) Score(rec align.Record) int {
	score := 0
	switch rec["General_Health"] {
	case "Poor", "Fair":
		score += 2
	}
	if rec["Exercise"] == "No" {
		score++
	}
	if rec["Smoking_History"] == "Yes" {
		score += 2
	}
	raw, ok := rec["BMI"]
	if bmi, rc := align.ResolveNumeric(align.Column{Name: "BMI"}, raw, ok); rc == align.RecoveryNone && bmi > 30 {
		score++
	}
	switch rec["Age_Category"] {
	case "70-74", "75-79", "80+":
		score++
	}
	return score
}

// Predict returns "Yes" when the score reaches RulesThreshold.
func (r Rules) Predict(rec align.Record) (string, int) {
	score := r.Score(rec)
	if score >= RulesThreshold {
		return "Yes", score
	}
	return "No", score
}
