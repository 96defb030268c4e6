package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPolicyHolderDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewPolicyHolder(Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("new policy holder: %v", err)
	}
	if got := holder.Get(); got != DefaultNegotiationPolicy() {
		t.Fatalf("expected default policy, got %+v", got)
	}
}

func TestNewPolicyHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "negotiation.yml")
	content := []byte("negotiation:\n  acceptedIsTerminal: false\n  maxAdvanceValidityDays: 14\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewPolicyHolder(Config{PolicyPath: path}, zap.NewNop())
	require.NoError(t, err)

	policy := holder.Get()
	assert.False(t, policy.AcceptedIsTerminal)
	assert.Equal(t, 14, policy.MaxAdvanceValidityDays)
	assert.Equal(t, DefaultNegotiationPolicy().MaxRentScheduleMonths, policy.MaxRentScheduleMonths)
}

func TestNewPolicyHolderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "negotiation.yml")
	require.NoError(t, os.WriteFile(path, []byte("negotiation:\n  maxAdvanceValidityDays: 0\n"), 0o600))

	_, err := NewPolicyHolder(Config{PolicyPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestNilPolicyHolderFallsBackToDefaults(t *testing.T) {
	var holder *PolicyHolder
	assert.Equal(t, DefaultNegotiationPolicy(), holder.Get())
}
