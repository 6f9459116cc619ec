package models

// Customer is someone who rents movies
type Customer struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Phone        string `json:"phone" db:"phone"`
	IsGoldMember bool   `json:"isGoldMember" db:"is_gold_member"`
}

// CustomerRequest is the body accepted by POST and PUT /customers
type CustomerRequest struct {
	Name         string `json:"name" validate:"required,min=5,max=50"`
	Phone        string `json:"phone" validate:"required,min=5,max=50"`
	IsGoldMember bool   `json:"isGoldMember"`
}

// CustomerSnapshot is the copy of a customer embedded in a rental
type CustomerSnapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	IsGoldMember bool   `json:"isGoldMember"`
}

// Snapshot copies the fields a rental keeps about its customer
func (c Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{ID: c.ID, Name: c.Name, Phone: c.Phone, IsGoldMember: c.IsGoldMember}
}
