package domain

// Client is a person record in the directory.
type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// Phone is a numeric contact value owned by exactly one client.
type Phone struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"client_id"`
	Number   int64 `json:"number"`
}

// ClientPhone is one row of the client/phone join.
// A client with several phones yields one row per phone; a client with none
// yields a single row with PhoneID and Number set to nil.
type ClientPhone struct {
	Client
	PhoneID *int64 `json:"phone_id"`
	Number  *int64 `json:"number"`
}

// ClientUpdate carries the fields to change on a client.
// Nil fields are left untouched.
type ClientUpdate struct {
	Name    *string
	Surname *string
	Email   *string
}

// IsEmpty reports whether no field was supplied.
func (u ClientUpdate) IsEmpty() bool {
	return u.Name == nil && u.Surname == nil && u.Email == nil
}

// Criteria is an exact-match filter over the client/phone join.
// A nil criterion matches every row.
type Criteria struct {
	Name    *string
	Surname *string
	Email   *string
	Number  *int64
}

type CreateClientRequest struct {
	Name    string   `json:"name" binding:"required,max=40"`
	Surname string   `json:"surname" binding:"required,max=40"`
	Email   string   `json:"email" binding:"required,max=320,clientemail"`
	Phones  []string `json:"phones" binding:"omitempty,dive,phonenumber"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=40"`
	Surname *string `json:"surname" binding:"omitempty,min=1,max=40"`
	Email   *string `json:"email" binding:"omitempty,max=320,clientemail"`
}

type AddPhoneRequest struct {
	Number string `json:"number" binding:"required,phonenumber"`
}

// SearchRequest holds the raw search criteria as received from a caller.
// Number is text and is coerced to an integer by the service.
type SearchRequest struct {
	Name    *string `form:"name"`
	Surname *string `form:"surname"`
	Email   *string `form:"email"`
	Number  *string `form:"number"`
}
