package requests

import "github.com/shashiranjanraj/duka/app/models"

// Checkout is the body of POST /checkout. Phone formats are checked by the
// order service so the caller gets the precise phone error.
type Checkout struct {
	CustomerName string `json:"customer_name" form:"customer_name" validate:"required,notblank,max=120"`
	Email        string `json:"email"         form:"email"         validate:"omitempty,email,max=254"`
	Phone        string `json:"phone"         form:"phone"         validate:"max=32"`
	MpesaPhone   string `json:"mpesa_phone"   form:"mpesa_phone"   validate:"max=32"`
	Address      string `json:"address"       form:"address"       validate:"required,notblank,max=500"`
	Notes        string `json:"notes"         form:"notes"         validate:"max=1000"`
}

// Customer converts the request into the domain value.
func (r Checkout) Customer() models.Customer {
	return models.Customer{
		Name:       r.CustomerName,
		Email:      r.Email,
		Phone:      r.Phone,
		MpesaPhone: r.MpesaPhone,
		Address:    r.Address,
		Notes:      r.Notes,
	}
}
