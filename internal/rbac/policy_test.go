package rbac

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{"admin", RoleAdmin, false},
		{"superadmin", RoleSuperAdmin, false},
		{"  ADMIN  ", RoleAdmin, false},
		{"assessor", RoleUser, false},
		{"Assessor", RoleUser, false},
		{"gestor", "", true},
		{"", "", true},
		{"root", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q): esperava erro", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %s, esperava %s", tc.raw, got, tc.want)
		}
	}
}

func TestRequiresGabinete(t *testing.T) {
	if RequiresGabinete(RoleSuperAdmin) {
		t.Error("superadmin não exige gabinete")
	}
	if !RequiresGabinete(RoleUser) || !RequiresGabinete(RoleAdmin) {
		t.Error("user e admin exigem gabinete")
	}
}

func TestCanManage(t *testing.T) {
	actions := []Action{ActionAddMember, ActionEditMember, ActionChangeRole, ActionDeactivate, ActionCrossTenant}

	// superadmin pode tudo, sobre qualquer alvo
	for _, target := range []Role{RoleUser, RoleAdmin, RoleSuperAdmin} {
		for _, action := range actions {
			if !CanManage(RoleSuperAdmin, target, action) {
				t.Errorf("superadmin deveria poder %s sobre %s", action, target)
			}
		}
	}

	// admin administra apenas membros comuns, sem elevação nem cross-tenant
	admin := []struct {
		target Role
		action Action
		want   bool
	}{
		{RoleUser, ActionAddMember, true},
		{RoleUser, ActionEditMember, true},
		{RoleUser, ActionDeactivate, true},
		{RoleUser, ActionChangeRole, false},
		{RoleUser, ActionCrossTenant, false},
		{RoleAdmin, ActionAddMember, false},
		{RoleAdmin, ActionEditMember, false},
		{RoleAdmin, ActionDeactivate, false},
		{RoleSuperAdmin, ActionEditMember, false},
	}
	for _, tc := range admin {
		if got := CanManage(RoleAdmin, tc.target, tc.action); got != tc.want {
			t.Errorf("CanManage(admin, %s, %s) = %v, esperava %v", tc.target, tc.action, got, tc.want)
		}
	}

	// membro comum não administra ninguém
	for _, target := range []Role{RoleUser, RoleAdmin, RoleSuperAdmin} {
		for _, action := range actions {
			if CanManage(RoleUser, target, action) {
				t.Errorf("user não deveria poder %s sobre %s", action, target)
			}
		}
	}
}
