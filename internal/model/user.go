package model

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  Password is the bcrypt hash of the user's password;
// handlers must strip it before returning a user in a response.
// Role is either "user" or "admin" and drives authorization.
//
// Fields:
//  ID                – primary key identifier of the user.
//  FirstName         – user's first name.
//  LastName          – user's last name (may be empty).
//  Email             – unique email address.
//  Password          – bcrypt hashed password.
//  Role              – role name ("user" or "admin").
//  PreferredLanguage – UI language preference (nullable).
//  ProfileImageID    – reference into the images table (nullable).
type User struct {
	ID                uint64  `json:"id"`                 // users.id
	FirstName         string  `json:"first_name"`         // users.first_name
	LastName          string  `json:"last_name"`          // users.last_name
	Email             string  `json:"email"`              // users.email
	Password          string  `json:"password,omitempty"` // users.password (bcrypt hash)
	Role              string  `json:"role"`               // users.role
	PreferredLanguage *string `json:"preferred_language"` // users.preferred_language (nullable)
	ProfileImageID    *uint64 `json:"profile_image_id"`   // users.profile_image_id (nullable)
}

// Roles accepted in users.role.  RoleAdmin unlocks management
// endpoints and bypasses ownership checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Public returns a copy of the user with the password hash removed.
// Used by every handler that echoes a user back to the client.
func (u User) Public() User {
	u.Password = ""
	return u
}
