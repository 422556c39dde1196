package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinsara/storefront/internal/checkout"
	"github.com/vinsara/storefront/internal/domain"
)

func savedAddresses() []domain.SavedAddress {
	return []domain.SavedAddress{
		{
			ID: 1,
			Address: domain.ShippingAddress{
				FirstName:  "Old",
				Address:    "1 First Street",
				City:       "Mumbai",
				PostalCode: "400001",
				Phone:      "8888888888",
			},
		},
		{
			ID:        2,
			IsDefault: true,
			Address: domain.ShippingAddress{
				FirstName:  "Asha",
				LastName:   "Rao",
				Address:    "12 MG Road",
				City:       "Hyderabad",
				State:      "Telangana",
				PostalCode: "500001",
				Phone:      "9999999999",
			},
		},
	}
}

func TestPrefillShipping_UsesDefaultAddressForBlankFields(t *testing.T) {
	form := checkout.Form{Contact: domain.Contact{Email: "a@b.com"}}

	form = prefillShipping(form, savedAddresses())

	assert.Equal(t, "Asha", form.Shipping.FirstName)
	assert.Equal(t, "12 MG Road", form.Shipping.Address)
	assert.Equal(t, "Hyderabad", form.Shipping.City)
	assert.Equal(t, "500001", form.Shipping.PostalCode)
	assert.Equal(t, "9999999999", form.Contact.Phone)
}

func TestPrefillShipping_ExplicitFlagsWin(t *testing.T) {
	form := checkout.Form{
		Contact: domain.Contact{Email: "a@b.com", Phone: "7777777777"},
		Shipping: domain.ShippingAddress{
			FirstName: "Priya",
			City:      "Chennai",
		},
	}

	form = prefillShipping(form, savedAddresses())

	assert.Equal(t, "Priya", form.Shipping.FirstName)
	assert.Equal(t, "Chennai", form.Shipping.City)
	assert.Equal(t, "7777777777", form.Contact.Phone)
	// Blank fields still come from the saved address.
	assert.Equal(t, "12 MG Road", form.Shipping.Address)
}

func TestPrefillShipping_FallsBackToFirstAddress(t *testing.T) {
	saved := savedAddresses()[:1]
	form := checkout.Form{}

	form = prefillShipping(form, saved)

	assert.Equal(t, "1 First Street", form.Shipping.Address)
	assert.Equal(t, "Mumbai", form.Shipping.City)
}

func TestPrefillShipping_NoSavedAddressesIsNoOp(t *testing.T) {
	form := checkout.Form{Shipping: domain.ShippingAddress{City: "Chennai"}}

	assert.Equal(t, form, prefillShipping(form, nil))
}
