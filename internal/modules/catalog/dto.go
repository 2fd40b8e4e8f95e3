package catalog

type CreateRoomRequest struct {
	RoomNumber    string `json:"roomNumber" binding:"required,max=16"`
	RoomType      string `json:"roomType" binding:"required,max=32"`
	PricePerNight int64  `json:"pricePerNight" binding:"required,gt=0"`
	MaxGuests     int    `json:"maxGuests" binding:"required,min=1,max=10"`
	IsActive      *bool  `json:"isActive"`
}

type UpdateRoomRequest struct {
	RoomNumber    *string `json:"roomNumber" binding:"omitempty,min=1,max=16"`
	RoomType      *string `json:"roomType" binding:"omitempty,min=1,max=32"`
	PricePerNight *int64  `json:"pricePerNight" binding:"omitempty,gt=0"`
	MaxGuests     *int    `json:"maxGuests" binding:"omitempty,min=1,max=10"`
	IsActive      *bool   `json:"isActive"`
}

type ListRoomsQuery struct {
	Active bool `form:"active"`
}
