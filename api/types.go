package api

// Page is the backend's paged list envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

type RoomType struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"shortDescription"`
	MaxGuests        int     `json:"maxGuests"`
	BasePrice        float64 `json:"basePrice"`
}

type RoomImage struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

type Room struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Price       float64     `json:"price"`
	Status      string      `json:"status"`
	Description string      `json:"description"`
	Capacity    int         `json:"capacity"`
	Amenities   Amenities   `json:"amenities"`
	Type        RoomType    `json:"type"`
	Images      []RoomImage `json:"images"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`

	amenitiesErr error
}

// NightlyPrice falls back to the room type's base price.
func (r Room) NightlyPrice() float64 {
	if r.Price > 0 {
		return r.Price
	}
	return r.Type.BasePrice
}

type Booking struct {
	ID            int64   `json:"id,omitempty"`
	BookingCode   string  `json:"bookingCode,omitempty"`
	CheckIn       string  `json:"checkIn"`
	CheckOut      string  `json:"checkOut"`
	Nights        int     `json:"nights,omitempty"`
	Guests        int     `json:"guests,omitempty"`
	PriceTotal    float64 `json:"priceTotal,omitempty"`
	DepositAmount float64 `json:"depositAmount,omitempty"`
	Status        string  `json:"status,omitempty"`
	CancelReason  string  `json:"cancelReason,omitempty"`
	CancelledAt   string  `json:"cancelledAt,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	RoomID        int64   `json:"roomId"`
	RoomTitle     string  `json:"roomTitle,omitempty"`
	RoomTypeID    int64   `json:"roomTypeId,omitempty"`
	RoomTypeName  string  `json:"roomTypeName,omitempty"`
	UserID        int64   `json:"userId,omitempty"`
	UserEmail     string  `json:"userEmail,omitempty"`
	UserFullName  string  `json:"userFullName,omitempty"`
}

type BookingSuggestion struct {
	RoomTypeID     int64  `json:"roomTypeId"`
	RoomTypeName   string `json:"roomTypeName"`
	RoomID         int64  `json:"roomId"`
	RoomTitle      string `json:"roomTitle"`
	RoomCode       string `json:"roomCode"`
	LastBookedDate string `json:"lastBookedDate"`
	BookingCount   int64  `json:"bookingCount"`
	SuggestionType string `json:"suggestionType"`
}

type Transaction struct {
	ID                    int64    `json:"id"`
	BookingID             int64    `json:"bookingId"`
	UserID                int64    `json:"userId"`
	Provider              string   `json:"provider"`
	ProviderTransactionID string   `json:"providerTransactionId"`
	Amount                float64  `json:"amount"`
	Currency              string   `json:"currency"`
	Status                string   `json:"status"`
	Type                  string   `json:"type"`
	CreatedAt             string   `json:"createdAt"`
	Booking               *Booking `json:"bookingDTO,omitempty"`
}

type ReviewResponse struct {
	ID             int64  `json:"id"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
	ResponderID    int64  `json:"responderId"`
	ResponderName  string `json:"responderName"`
	ResponderEmail string `json:"responderEmail"`
}

type Review struct {
	ID           int64            `json:"id"`
	Rating       int              `json:"rating"`
	Title        string           `json:"title"`
	Content      string           `json:"content"`
	Status       string           `json:"status"`
	CreatedAt    string           `json:"createdAt"`
	BookingID    int64            `json:"bookingId"`
	BookingCode  string           `json:"bookingCode"`
	RoomID       int64            `json:"roomId"`
	RoomCode     string           `json:"roomCode"`
	RoomTitle    string           `json:"roomTitle"`
	UserID       int64            `json:"userId"`
	UserEmail    string           `json:"userEmail"`
	UserFullName string           `json:"userFullName"`
	Responses    []ReviewResponse `json:"responses"`
}

type User struct {
	ID            int64    `json:"id"`
	Email         string   `json:"email"`
	FullName      string   `json:"fullName"`
	Phone         string   `json:"phone"`
	IsActive      bool     `json:"isActive"`
	EmailVerified bool     `json:"emailVerified"`
	LastLogin     string   `json:"lastLogin"`
	CreatedAt     string   `json:"createdAt"`
	Roles         []string `json:"roles"`
}
