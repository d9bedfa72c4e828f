package treatment

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/cardiorisk/internal/align"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "IMMEDIATE", d.Emergency.Priority)
	assert.Equal(t, "Within 24 hours", d.Emergency.Timeframe)
	require.Len(t, d.Emergency.Actions, 2)
	assert.Equal(t, "Emergency Room Visit", d.Emergency.Actions[0].Action)
	assert.Equal(t, "ONGOING", d.MonitoringSchedule.Priority)
	require.NotEmpty(t, d.MonitoringSchedule.LaboratoryTests)
	assert.Equal(t, "Lipid Panel", d.MonitoringSchedule.LaboratoryTests[0].Test)
	assert.NotEmpty(t, d.EmergencyPlanning.ActionPlan.WarningSigns)
}

func TestLabTestTargetText(t *testing.T) {
	assert.Equal(t, "a", LabTest{Targets: "a", Target: "b"}.TargetText())
	assert.Equal(t, "b", LabTest{Target: "b"}.TargetText())
	assert.Equal(t, "As per physician", LabTest{}.TargetText())
}

func TestPlan(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	patient := align.Record{"General_Health": "Poor", "Age_Category": "70-74", "BMI": 31.456, "Exercise": "No"}
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	require.NoError(t, Plan(&buf, patient, d, now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "PERSONALIZED HEART DISEASE TREATMENT PLAN\n"))
	for _, want := range []string{
		"- General Health: Poor",
		"- BMI: 31.5",
		"- Smoking History: N/A",
		"EMERGENCY ACTIONS (IMMEDIATE PRIORITY)",
		"- Emergency Room Visit",
		"DIAGNOSTIC TESTS (HIGH PRIORITY)",
		"LIFESTYLE INTERVENTIONS (ESSENTIAL)",
		"Foods to Limit:",
		"Targets: LDL <100 mg/dL",
		"PSYCHOLOGICAL SUPPORT",
		"IMPORTANT DISCLAIMERS:",
		"Generated on: 2024-03-09 14:05:07",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPlanWithoutBMI(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Plan(&buf, nil, d, time.Now()))
	assert.Contains(t, buf.String(), "- BMI: N/A")

	buf.Reset()
	require.NoError(t, Plan(&buf, align.Record{"BMI": "heavy"}, d, time.Now()))
	assert.Contains(t, buf.String(), "- BMI: N/A")

	assert.Error(t, Plan(&buf, nil, nil, time.Now()))
}
