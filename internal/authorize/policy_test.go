package authorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/iliyamo/telehealth-core/internal/model"
)

func TestCanChat(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	tests := []struct {
		from, to domain.Role
		want     bool
	}{
		{domain.RoleDoctor, domain.RolePatient, true},
		{domain.RoleDoctor, domain.RoleDoctor, false},
		{domain.RoleDoctor, domain.RoleCommunityHealthWorker, false},
		{domain.RolePatient, domain.RoleDoctor, true},
		{domain.RolePatient, domain.RoleCommunityHealthWorker, true},
		{domain.RolePatient, domain.RolePatient, false},
		{domain.RoleCommunityHealthWorker, domain.RolePatient, true},
		{domain.RoleCommunityHealthWorker, domain.RoleDoctor, false},
		{domain.RoleCommunityHealthWorker, domain.RoleCommunityHealthWorker, false},
		{domain.Role("Admin"), domain.RolePatient, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanChat(tt.from, tt.to))
		})
	}
}

func TestPrescriptionActions(t *testing.T) {
	p := MustPolicy()

	assert.True(t, p.CanIssuePrescription(domain.RoleDoctor))
	assert.False(t, p.CanIssuePrescription(domain.RolePatient))
	assert.False(t, p.CanIssuePrescription(domain.RoleCommunityHealthWorker))

	assert.True(t, p.CanResolvePrescription(domain.RolePatient))
	assert.False(t, p.CanResolvePrescription(domain.RoleDoctor))
}

func TestRevoke(t *testing.T) {
	p := MustPolicy()
	require.True(t, p.CanIssuePrescription(domain.RoleDoctor))

	require.NoError(t, p.Revoke(string(domain.RoleDoctor), ObjPrescription, ActIssue))
	assert.False(t, p.CanIssuePrescription(domain.RoleDoctor))
	assert.True(t, p.CanResolvePrescription(domain.RolePatient))

	assert.NoError(t, p.Revoke(string(domain.RoleDoctor), ObjPrescription, ActIssue))
}
