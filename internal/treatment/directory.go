// Package treatment carries the static treatment recommendation directory
// shown for high-risk assessments and renders the downloadable plan.
package treatment

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed directory.json
var directoryJSON []byte

// Section fields shared by every directory category.
type Section struct {
	Priority  string `json:"priority"`
	Timeframe string `json:"timeframe"`
}

type Directory struct {
	Emergency              Emergency         `json:"emergency"`
	DiagnosticTests        Diagnostics       `json:"diagnostic_tests"`
	Medications            Medications       `json:"medications"`
	LifestyleInterventions Lifestyle         `json:"lifestyle_interventions"`
	NutritionTherapy       Nutrition         `json:"nutrition_therapy"`
	MonitoringSchedule     Monitoring        `json:"monitoring_schedule"`
	PsychologicalSupport   Psychological     `json:"psychological_support"`
	EmergencyPlanning      EmergencyPlanning `json:"emergency_planning"`
}

type Emergency struct {
	Section
	Actions []EmergencyAction `json:"actions"`
}

type EmergencyAction struct {
	Action    string `json:"action"`
	Condition string `json:"condition"`
	Urgency   string `json:"urgency"`
}

type Diagnostics struct {
	Section
	Categories struct {
		CardiacAssessment []Test `json:"cardiac_assessment"`
		BloodWork         []Test `json:"blood_work"`
	} `json:"categories"`
}

type Test struct {
	Test      string `json:"test"`
	Purpose   string `json:"purpose"`
	Frequency string `json:"frequency"`
}

type Medications struct {
	Section
	Categories struct {
		Cardiovascular []Medication `json:"cardiovascular"`
		Preventive     []Medication `json:"preventive"`
	} `json:"categories"`
}

type Medication struct {
	Type     string `json:"type"`
	Purpose  string `json:"purpose"`
	Examples string `json:"examples,omitempty"`
	Dosage   string `json:"dosage,omitempty"`
	Note     string `json:"note,omitempty"`
}

type Lifestyle struct {
	Section
	Categories struct {
		PhysicalActivity []Activity        `json:"physical_activity"`
		SmokingCessation []CessationMethod `json:"smoking_cessation"`
	} `json:"categories"`
}

type Activity struct {
	Activity       string `json:"activity"`
	Recommendation string `json:"recommendation"`
	Examples       string `json:"examples"`
	Progression    string `json:"progression,omitempty"`
	Benefits       string `json:"benefits,omitempty"`
}

type CessationMethod struct {
	Method      string `json:"method"`
	Options     string `json:"options,omitempty"`
	SuccessRate string `json:"success_rate,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Note        string `json:"note,omitempty"`
}

type Nutrition struct {
	Section
	DietaryApproaches struct {
		MediterraneanDiet Diet `json:"mediterranean_diet"`
		DashDiet          Diet `json:"dash_diet"`
	} `json:"dietary_approaches"`
	SpecificRecommendations struct {
		Increase []FoodIncrease `json:"increase"`
		Limit    []FoodLimit    `json:"limit"`
	} `json:"specific_recommendations"`
}

type Diet struct {
	Description   string   `json:"description"`
	KeyComponents []string `json:"key_components"`
	Benefits      string   `json:"benefits"`
}

type FoodIncrease struct {
	Food      string `json:"food"`
	Frequency string `json:"frequency"`
	Benefit   string `json:"benefit"`
}

type FoodLimit struct {
	Food   string `json:"food"`
	Limit  string `json:"limit"`
	Reason string `json:"reason"`
}

type Monitoring struct {
	Section
	VitalSigns      []VitalSign `json:"vital_signs"`
	LaboratoryTests []LabTest   `json:"laboratory_tests"`
}

type VitalSign struct {
	Parameter string `json:"parameter"`
	Frequency string `json:"frequency"`
	Target    string `json:"target"`
	Device    string `json:"device,omitempty"`
	Note      string `json:"note,omitempty"`
}

type LabTest struct {
	Test      string `json:"test"`
	Frequency string `json:"frequency"`
	Targets   string `json:"targets,omitempty"`
	Target    string `json:"target,omitempty"`
}

// TargetText prefers Targets, then Target.
func (t LabTest) TargetText() string {
	switch {
	case t.Targets != "":
		return t.Targets
	case t.Target != "":
		return t.Target
	}
	return "As per physician"
}

type Psychological struct {
	Section
	Interventions []Intervention `json:"interventions"`
}

type Intervention struct {
	Type           string   `json:"type"`
	Techniques     []string `json:"techniques,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Apps           string   `json:"apps,omitempty"`
	Purpose        string   `json:"purpose,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Options        []string `json:"options,omitempty"`
	Benefits       string   `json:"benefits,omitempty"`
}

type EmergencyPlanning struct {
	Section
	ActionPlan struct {
		WarningSigns      []string `json:"warning_signs"`
		ImmediateResponse []string `json:"immediate_response"`
		Preparation       []string `json:"preparation"`
	} `json:"action_plan"`
}

// Load decodes the embedded directory.
func Load() (*Directory, error) {
	var d Directory
	if err := json.Unmarshal(directoryJSON, &d); err != nil {
		return nil, fmt.Errorf("decode treatment directory: %w", err)
	}
	return &d, nil
}
