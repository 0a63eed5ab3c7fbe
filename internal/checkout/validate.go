package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/creatorly/storefront/internal/domain"
)

// FieldErrors maps dotted field paths ("customer.email",
// "shippingAddress.postalCode") to user-readable messages.
type FieldErrors map[string]string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var phoneStrip = regexp.MustCompile(`[\s\-()]`)

// National mobile forms (trunk-prefixed and calling-code-prefixed) plus a
// generic international shape.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^0[789][01]\d{8}$`),
	regexp.MustCompile(`^\+?234[789][01]\d{8}$`),
	regexp.MustCompile(`^\+?[1-9]\d{7,15}$`),
}

// postalSchemes is extensible configuration: unknown countries only require
// a non-empty postal code. Patterns run against the space-stripped,
// upper-cased value.
var postalSchemes = map[string]*regexp.Regexp{
	"US":  regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"USA": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"CA":  regexp.MustCompile(`^[A-Z]\d[A-Z]\d[A-Z]\d$`),
	"GB":  regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]?\d[A-Z]{2}$`),
	"UK":  regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]?\d[A-Z]{2}$`),
}

func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

func validatePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return "Phone number is required"
	}
	clean := phoneStrip.ReplaceAllString(phone, "")
	for _, pattern := range phonePatterns {
		if pattern.MatchString(clean) {
			return ""
		}
	}
	return "Please enter a valid phone number (e.g., 08012345678 or +2348012345678)"
}

func validateRequired(value, fieldName string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", fieldName)
	}
	return ""
}

func validatePostalCode(postalCode, country string) string {
	if strings.TrimSpace(postalCode) == "" {
		return "Postal code is required"
	}
	scheme, ok := postalSchemes[strings.ToUpper(country)]
	if !ok {
		return ""
	}
	clean := strings.ToUpper(strings.ReplaceAll(postalCode, " ", ""))
	if !scheme.MatchString(clean) {
		return fmt.Sprintf("Please enter a valid postal code for %s", strings.ToUpper(country))
	}
	return ""
}

func validateCustomer(c domain.Customer, errs FieldErrors) {
	errs.set("customer.firstName", validateRequired(c.FirstName, "First name"))
	errs.set("customer.lastName", validateRequired(c.LastName, "Last name"))
	errs.set("customer.email", validateEmail(c.Email))
	errs.set("customer.phone", validatePhone(c.Phone))
}

func validateAddress(prefix string, a domain.Address, errs FieldErrors) {
	errs.set(prefix+".address", validateRequired(a.Address, "Street address"))
	errs.set(prefix+".city", validateRequired(a.City, "City"))
	errs.set(prefix+".state", validateRequired(a.State, "State"))
	errs.set(prefix+".postalCode", validatePostalCode(a.PostalCode, a.Country))
	errs.set(prefix+".country", validateRequired(a.Country, "Country"))
}

// Validate runs every field rule. The billing address is checked only when
// it is distinct from the shipping address.
func Validate(d Details) FieldErrors {
	errs := make(FieldErrors)
	validateCustomer(d.Customer, errs)
	validateAddress("shippingAddress", d.ShippingAddress, errs)
	if !d.UseShippingAsBilling {
		validateAddress("billingAddress", d.BillingAddress, errs)
	}
	return errs
}

func (e FieldErrors) set(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}
