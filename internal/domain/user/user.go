package user

// User is an account allowed into the admin area.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleCode     RoleCode
}
