package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"PRDSRV01", false},
		{"Windows Server", false},
		{"", true},
		{"   ", true},
		{"bad\nname", true},
		{string(make([]byte, 256)), true},
	}
	for _, tt := range tests {
		err := ValidateLabel("name", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil {
			assert.True(t, errors.Is(err, ErrInvalidInput))
		}
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs([]string{" t1", "t2", "", "t1", "t3 ", "t2"})
	assert.Equal(t, []string{"t1", "t2", "t3"}, got)
	assert.Empty(t, NormalizeIDs(nil))
}

func TestValidateTechnology(t *testing.T) {
	valid := Technology{
		Name:           "Windows Server",
		Version:        "2012 R2",
		SupportStatus:  SupportStatusEOL,
		SupportEndDate: NewDate(2023, 10, 10),
	}
	assert.NoError(t, ValidateTechnology(&valid))

	badStatus := valid
	badStatus.SupportStatus = "LTS"
	assert.ErrorIs(t, ValidateTechnology(&badStatus), ErrInvalidInput)

	noDate := valid
	noDate.SupportEndDate = Date{}
	assert.ErrorIs(t, ValidateTechnology(&noDate), ErrInvalidInput)

	noVersion := valid
	noVersion.Version = ""
	assert.ErrorIs(t, ValidateTechnology(&noVersion), ErrInvalidInput)
}

func TestValidateServer_NormalizesTechnologies(t *testing.T) {
	s := Server{Name: "PRDSRV01", Status: ServerStatusActive, Technologies: []string{"t1", "t1", " "}}
	assert.NoError(t, ValidateServer(&s))
	assert.Equal(t, []string{"t1"}, s.Technologies)

	s.Status = "Retired"
	assert.ErrorIs(t, ValidateServer(&s), ErrInvalidInput)
}

func TestValidateApplication(t *testing.T) {
	a := Application{Name: "Customer Portal", Criticality: CriticalityCritical, Servers: []string{"s1", "s1"}}
	assert.NoError(t, ValidateApplication(&a))
	assert.Equal(t, []string{"s1"}, a.Servers)

	a.Criticality = "Severe"
	assert.ErrorIs(t, ValidateApplication(&a), ErrInvalidInput)
}

func TestValidateRemediation(t *testing.T) {
	start := NewDate(2024, 2, 15)
	r := Remediation{
		Status:               RemediationStatusInProgress,
		AssignedTo:           "Alex Johnson",
		RemediationType:      RemediationTypeUpgrade,
		StartDate:            &start,
		TargetCompletionDate: NewDate(2024, 6, 30),
	}
	assert.NoError(t, ValidateRemediation(&r))

	early := r
	early.TargetCompletionDate = NewDate(2024, 1, 1)
	assert.ErrorIs(t, ValidateRemediation(&early), ErrInvalidInput)

	noAssignee := r
	noAssignee.AssignedTo = ""
	assert.ErrorIs(t, ValidateRemediation(&noAssignee), ErrInvalidInput)

	badType := r
	badType.RemediationType = "Patch"
	assert.ErrorIs(t, ValidateRemediation(&badType), ErrInvalidInput)
}
