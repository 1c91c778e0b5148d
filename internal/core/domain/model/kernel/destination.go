package kernel

import "strings"

// Destination is where a shipment is delivered. Every part is optional:
// drafts are often saved before the address is known.
type Destination struct {
	address  string
	country  string
	postcode string
}

func NewDestination(address, country, postcode string) Destination {
	return Destination{
		address:  strings.TrimSpace(address),
		country:  strings.TrimSpace(country),
		postcode: strings.TrimSpace(postcode),
	}
}

func (d Destination) Address() string  { return d.address }
func (d Destination) Country() string  { return d.country }
func (d Destination) Postcode() string { return d.postcode }

// String joins the non-empty parts with ", ".
func (d Destination) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.address, d.postcode, d.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
