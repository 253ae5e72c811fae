package model

// Role is the access level stored in accounts.role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// StartingBalance is credited to every account at registration.  It is kept
// as a decimal string so it round-trips through DECIMAL(15,2) unchanged.
const StartingBalance = "100000.00"

// Account represents a row in the `accounts` table.  The json tags are
// omitted on purpose; handlers define their own response shapes.
//
// Fields:
//
//	ID           – primary key identifier.
//	Username     – unique login name.
//	Email        – contact address.
//	Phone        – optional phone number (nil when not provided).
//	PasswordHash – stored password digest, never the plaintext.
//	Balance      – DECIMAL(15,2) as a string.
//	Role         – customer, manager or admin.
type Account struct {
	ID           uint64  // accounts.id
	Username     string  // accounts.username
	Email        string  // accounts.email
	Phone        *string // accounts.phone (nullable)
	PasswordHash string  // accounts.password_hash
	Balance      string  // accounts.balance
	Role         Role    // accounts.role
}
