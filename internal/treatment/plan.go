package treatment

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Skufu/cardiorisk/internal/align"
)

const planTimeLayout = "2006-01-02 15:04:05"

var planFuncs = template.FuncMap{
	"rule": func(n int) string { return strings.Repeat("=", n) },
	"field": func(rec align.Record, name string) string {
		v, ok := rec[name]
		if !ok || v == nil {
			return "N/A"
		}
		return fmt.Sprint(v)
	},
	"bmi": func(rec align.Record) string {
		v, ok := align.ResolveNumeric(align.Column{Name: "BMI"}, rec["BMI"], hasKey(rec, "BMI"))
		if ok != align.RecoveryNone {
			return "N/A"
		}
		return fmt.Sprintf("%.1f", v)
	},
}

var planTemplate = template.Must(template.New("plan").Funcs(planFuncs).Parse(`PERSONALIZED HEART DISEASE TREATMENT PLAN
{{rule 50}}

PATIENT INFORMATION:
- General Health: {{field .Patient "General_Health"}}
- Age Category: {{field .Patient "Age_Category"}}
- BMI: {{bmi .Patient}}
- Exercise: {{field .Patient "Exercise"}}
- Smoking History: {{field .Patient "Smoking_History"}}

EMERGENCY ACTIONS ({{.Dir.Emergency.Priority}} PRIORITY)
{{rule 40}}
Timeframe: {{.Dir.Emergency.Timeframe}}

Emergency Actions:
{{range .Dir.Emergency.Actions}}
- {{.Action}}
  Condition: {{.Condition}}
  Urgency: {{.Urgency}}
{{end}}
WARNING SIGNS TO WATCH FOR:
{{range .Dir.EmergencyPlanning.ActionPlan.WarningSigns}}• {{.}}
{{end}}
IMMEDIATE RESPONSE IF SYMPTOMS OCCUR:
{{range .Dir.EmergencyPlanning.ActionPlan.ImmediateResponse}}• {{.}}
{{end}}
DIAGNOSTIC TESTS ({{.Dir.DiagnosticTests.Priority}} PRIORITY)
{{rule 35}}
Timeframe: {{.Dir.DiagnosticTests.Timeframe}}

Cardiac Assessment Tests:
{{range .Dir.DiagnosticTests.Categories.CardiacAssessment}}
- {{.Test}}
  Purpose: {{.Purpose}}
  Frequency: {{.Frequency}}
{{end}}
Blood Work Tests:
{{range .Dir.DiagnosticTests.Categories.BloodWork}}
- {{.Test}}
  Purpose: {{.Purpose}}
  Frequency: {{.Frequency}}
{{end}}
LIFESTYLE INTERVENTIONS ({{.Dir.LifestyleInterventions.Priority}})
{{rule 35}}
Timeframe: {{.Dir.LifestyleInterventions.Timeframe}}

Physical Activity Program:
{{range .Dir.LifestyleInterventions.Categories.PhysicalActivity}}
- {{.Activity}}
  Recommendation: {{.Recommendation}}
  Examples: {{.Examples}}
{{- if .Progression}}
  Progression: {{.Progression}}
{{- end}}
{{end}}
NUTRITION PLAN:
Mediterranean Diet Benefits: {{.Dir.NutritionTherapy.DietaryApproaches.MediterraneanDiet.Benefits}}

Foods to Increase:
{{range .Dir.NutritionTherapy.SpecificRecommendations.Increase}}• {{.Food}} - {{.Frequency}} ({{.Benefit}})
{{end}}
Foods to Limit:
{{range .Dir.NutritionTherapy.SpecificRecommendations.Limit}}• {{.Food}} - {{.Limit}} ({{.Reason}})
{{end}}
MONITORING SCHEDULE ({{.Dir.MonitoringSchedule.Priority}})
{{rule 30}}

Vital Signs to Monitor:
{{range .Dir.MonitoringSchedule.VitalSigns}}
- {{.Parameter}}
  Frequency: {{.Frequency}}
  Target: {{.Target}}
{{- if .Device}}
  Device: {{.Device}}
{{- end}}
{{end}}
Laboratory Tests Schedule:
{{range .Dir.MonitoringSchedule.LaboratoryTests}}
- {{.Test}}
  Frequency: {{.Frequency}}
  Targets: {{.TargetText}}
{{end}}
PSYCHOLOGICAL SUPPORT
{{rule 20}}
{{range .Dir.PsychologicalSupport.Interventions}}
- {{.Type}}
{{- if .Recommendation}}
  Recommendation: {{.Recommendation}}
{{- end}}
{{- if .Apps}}
  Recommended Apps: {{.Apps}}
{{- end}}
{{end}}
IMPORTANT DISCLAIMERS:
{{rule 20}}
• This treatment plan is generated for educational purposes only
• All medical decisions must be made in consultation with qualified healthcare professionals
• Do not start, stop, or modify any treatments without medical supervision
• In case of emergency, call 911 immediately
• Keep this plan updated with your healthcare provider

Generated on: {{.Generated}}
`))

type planData struct {
	Patient   align.Record
	Dir       *Directory
	Generated string
}

// Plan writes the personalized plain-text treatment plan for patient.
func Plan(w io.Writer, patient align.Record, dir *Directory, now time.Time) error {
	if dir == nil {
		return fmt.Errorf("render plan: nil directory")
	}
	if patient == nil {
		patient = align.Record{}
	}
	err := planTemplate.Execute(w, planData{
		Patient:   patient,
		Dir:       dir,
		Generated: now.Format(planTimeLayout),
	})
	if err != nil {
		return fmt.Errorf("render plan: %w", err)
	}
	return nil
}

func hasKey(rec align.Record, name string) bool {
	_, ok := rec[name]
	return ok
}
