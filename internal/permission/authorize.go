package permission

// Decision is the outcome of an authorization check for an authenticated
// role against a view's required permission set.
type Decision int

const (
	Forbidden Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "forbidden"
}

// Authorize evaluates a view's required permission set against a role.
// requireAll selects AND semantics over OR. The super_admin bypass lives
// here and in the Table predicates only; call sites never special-case the
// role themselves. An empty requirement authorizes any authenticated role.
func (t *Table) Authorize(role Role, required []Permission, requireAll bool) Decision {
	if len(required) == 0 || role.IsSuperAdmin() {
		return Authorized
	}
	if requireAll {
		if t.HasAllPermissions(role, required) {
			return Authorized
		}
		return Forbidden
	}
	if t.HasAnyPermission(role, required) {
		return Authorized
	}
	return Forbidden
}
