package domain

// User is the profile payload the backend returns for an authenticated
// account. The backend owns all other account fields (id, roles, password
// hash); the client only ever sees name and email.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Role values accepted by the user-creation endpoint.
const (
	RoleSuperadmin    = "superadmin"
	RolePegawaiKantor = "pegawaikantor"
	RolePegawaiGudang = "pegawaigudang"
)

// Roles lists the assignable roles in display order.
var Roles = []string{RoleSuperadmin, RolePegawaiKantor, RolePegawaiGudang}

// ValidRole reports whether r is one of the assignable roles.
func ValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}
