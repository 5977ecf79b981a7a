package course

import "testing"

func TestRequiresCodeVerification(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleProfessor, false},
		{RoleTA, false},
		{RoleStudent, true},
		{RoleTeamLead, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := RequiresCodeVerification(tt.role); got != tt.want {
				t.Errorf("RequiresCodeVerification(%q) = %v; want %v", tt.role, got, tt.want)
			}
		})
	}
}
