package auth

// Operation is an action on an owned record.
type Operation string

// Operations checked by the guard.
const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpList   Operation = "list"
)

// Authorize decides whether sc may perform op on a record owned by ownerID.
//
// Admins may act on anything. Users may act only when ownerID is their own
// principal ID, and a record without an owner is never theirs. A nil
// context yields ErrAuthenticationRequired; every other refusal is
// ErrAccessDenied with no further detail.
func Authorize(sc *SecurityContext, ownerID string, op Operation) error {
	if sc == nil {
		return ErrAuthenticationRequired
	}

	switch sc.Role {
	case RoleAdmin:
		return nil
	case RoleUser:
		if ownerID != "" && sc.PrincipalID != "" && sc.PrincipalID == ownerID {
			return nil
		}
		return ErrAccessDenied
	default:
		return ErrAccessDenied
	}
}

// OwnerScope returns the owner predicate a listing query must carry.
// restricted is false only for admins; for everyone else ownerID is the
// caller and must be bound into the query itself, count included.
func OwnerScope(sc *SecurityContext) (ownerID string, restricted bool, err error) {
	if sc == nil {
		return "", true, ErrAuthenticationRequired
	}

	switch sc.Role {
	case RoleAdmin:
		return "", false, nil
	case RoleUser:
		if sc.PrincipalID == "" {
			return "", true, ErrAccessDenied
		}
		return sc.PrincipalID, true, nil
	default:
		return "", true, ErrAccessDenied
	}
}

// RequireRole allows sc only if it holds role.
func RequireRole(sc *SecurityContext, role Role) error {
	if sc == nil {
		return ErrAuthenticationRequired
	}
	if sc.Role != role {
		return ErrAccessDenied
	}
	return nil
}
