package rbac

// Action descreve a operação administrativa pretendida sobre um membro.
type Action string

const (
	ActionAddMember   Action = "add_member"
	ActionEditMember  Action = "edit_member"
	ActionChangeRole  Action = "change_role"
	ActionDeactivate  Action = "deactivate"
	ActionCrossTenant Action = "cross_tenant"
)

// CanManage decide se o papel do chamador pode executar a ação sobre o alvo.
// Admins administram apenas membros comuns do próprio gabinete; elevação de
// papel e operações entre gabinetes são exclusivas do superadmin.
func CanManage(caller, target Role, action Action) bool {
	switch caller {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		if target != RoleUser {
			return false
		}
		switch action {
		case ActionAddMember, ActionEditMember, ActionDeactivate:
			return true
		default:
			return false
		}
	default:
		return false
	}
}
