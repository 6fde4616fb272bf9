package model

// Address is a postal address stored as a jsonb value object, not an entity.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
}
