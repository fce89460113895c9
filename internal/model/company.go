package model

// Company represents a business that owns bookable rooms.  Each
// company belongs to exactly one user; a user may own several
// companies.  This struct corresponds to a row in the `companies`
// table.
//
// Fields:
//  ID      – primary key identifier.
//  UserID  – user ID of the company owner.
//  Name    – company display name.
//  Email   – unique contact email per company.
//  Phone   – contact phone number (nullable).
//  Address – postal address (nullable).
type Company struct {
	ID      uint64  `json:"id"`      // companies.id
	UserID  uint64  `json:"user_id"` // companies.user_id
	Name    string  `json:"name"`    // companies.name
	Email   string  `json:"email"`   // companies.email
	Phone   *string `json:"phone"`   // companies.phone (nullable)
	Address *string `json:"address"` // companies.address (nullable)
}
