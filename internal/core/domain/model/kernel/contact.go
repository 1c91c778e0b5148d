package kernel

import (
	"errors"
	"strings"

	"exportdocs/internal/pkg/errs"
)

// Contact is the sender or receiver block of a shipment.
// Name and mobile are mandatory; the mobile number is what couriers call and
// what the waybill QR code carries.
type Contact struct {
	name     string
	mobile   string
	email    string
	address  string
	business string
}

// NewContact trims every field and requires name and mobile.
func NewContact(name, mobile, email, address, business string) (Contact, error) {
	c := Contact{
		name:     strings.TrimSpace(name),
		mobile:   strings.TrimSpace(mobile),
		email:    strings.TrimSpace(email),
		address:  strings.TrimSpace(address),
		business: strings.TrimSpace(business),
	}
	if err := c.Validate(); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// Validate reports every missing mandatory field at once.
func (c Contact) Validate() error {
	var nameErr, mobileErr error
	if c.name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}
	if c.mobile == "" {
		mobileErr = errs.NewValueIsRequiredError("mobile")
	}
	return errors.Join(nameErr, mobileErr)
}

func (c Contact) Name() string     { return c.name }
func (c Contact) Mobile() string   { return c.mobile }
func (c Contact) Email() string    { return c.email }
func (c Contact) Address() string  { return c.address }
func (c Contact) Business() string { return c.business }
