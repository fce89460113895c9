package model

// Room is a bookable space owned by a company.  Rooms are the unit
// reservations are made against.  Status is free-form text; new rooms
// default to "available".
//
// Fields:
//  ID          – primary key identifier.
//  CompanyID   – company that owns the room.
//  Name        – room display name.
//  Capacity    – maximum number of people.
//  Status      – availability label (default "available").
//  Description – optional long description (nullable).
//  Price       – optional price per slot (nullable).
type Room struct {
	ID          uint64   `json:"id"`          // rooms.id
	CompanyID   uint64   `json:"company_id"`  // rooms.company_id
	Name        string   `json:"name"`        // rooms.name
	Capacity    uint32   `json:"capacity"`    // rooms.capacity
	Status      string   `json:"status"`      // rooms.status
	Description *string  `json:"description"` // rooms.description (nullable)
	Price       *float64 `json:"price"`       // rooms.price (nullable)
}

// RoomStatusAvailable is the default status assigned at creation.
const RoomStatusAvailable = "available"
