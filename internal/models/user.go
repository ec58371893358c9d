package models

// User персональные данные покупателя.
type User struct {
	ID        int    `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	IIN       string `json:"iin"`
	Email     string `json:"email"`
}
