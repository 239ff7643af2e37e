package shared

import "strings"

// DefaultCountry is used when an address carries no country
const DefaultCountry = "Deutschland"

// Address is a postal address value object
type Address struct {
	Street  string `json:"street"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Normalized trims all fields and fills in the default country
func (a Address) Normalized() Address {
	out := Address{
		Street:  strings.TrimSpace(a.Street),
		ZipCode: strings.TrimSpace(a.ZipCode),
		City:    strings.TrimSpace(a.City),
		Country: strings.TrimSpace(a.Country),
	}
	if out.Country == "" && !out.IsEmpty() {
		out.Country = DefaultCountry
	}
	return out
}

// IsEmpty reports whether no line of the address is set
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.ZipCode == "" && a.City == ""
}
