package customer

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/customer-intake-api/internal/domain"
	"github.com/customer-intake-api/internal/pkg/validate"
)

// Store catalog ids accepted on the intake form.
var (
	giftCardCatalog = set("roblox", "amazon", "itunes", "fortnite", "freefire", "playstation",
		"xbox", "nintendo", "pubg", "riot", "steam", "other")
	consoleCatalog = set("xboxone", "xbox360", "ps4", "ps5", "nintendoswitch", "nintendoswitch2",
		"pc", "retro")
	retroConsoleCatalog = set("ps1", "ps2", "xbox", "psp", "nintendo64-snes", "nintendo3ds-ds-wii")
)

// Gift cards whose account name is an email address.
var emailUsernameCards = set("amazon", "itunes")

var usernameEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	adultAge         = 18
	maxUsernameRunes = 40
)

var minBirthDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

func set(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// checkRequest applies the form rules and returns every failing field.
// today is the current calendar date in the shop's time zone.
func checkRequest(req *domain.CreateCustomerRequest, today time.Time) domain.FieldErrors {
	errs := domain.FieldErrors{}
	for field, msg := range validate.Fields(req) {
		errs[field] = msg
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(req.FullName)); n < 2 || n > 80 {
		errs["fullName"] = "Name must be between 2 and 80 characters"
	}
	if req.Email != "" && !validate.Var(strings.TrimSpace(req.Email), "email") {
		errs["email"] = "Please enter a valid email address"
	}

	dob, dobOK := birthDate(req.DOB, today)
	if !dobOK {
		errs["dob"] = "Please enter a valid date of birth (cannot be in the future or before 1900)"
	}

	if n := utf8.RuneCountInString(req.WhatsAppNumber); n < 10 {
		errs["whatsappNumber"] = "WhatsApp number must include country code and be at least 10 characters"
	} else if n > 25 {
		errs["whatsappNumber"] = "WhatsApp number must be less than 25 characters"
	}

	if req.PurchaseGiftCards == "yes" && len(req.SelectedGiftCards) == 0 {
		errs["selectedGiftCards"] = "Please select at least one gift card type"
	}
	for _, id := range req.SelectedGiftCards {
		if !giftCardCatalog[id] {
			errs["selectedGiftCards"] = "Unknown gift card: " + id
		}
	}
	for id, username := range req.GiftCardUsernames {
		username = strings.TrimSpace(username)
		if utf8.RuneCountInString(username) > maxUsernameRunes {
			errs["giftCardUsernames"] = "Username must be less than 40 characters"
			continue
		}
		if username != "" && emailUsernameCards[id] && !usernameEmail.MatchString(username) {
			errs["giftCardUsernames"] = "If you provide usernames for gift cards, Amazon and Apple require valid email addresses. You can leave usernames blank."
		}
	}

	if len(req.SelectedConsoles) == 0 && len(req.SelectedRetroConsoles) == 0 {
		errs["selectedConsoles"] = "Please select at least one gaming system"
	}
	for _, id := range req.SelectedConsoles {
		if !consoleCatalog[id] {
			errs["selectedConsoles"] = "Unknown gaming system: " + id
		}
	}
	for _, id := range req.SelectedRetroConsoles {
		if !retroConsoleCatalog[id] {
			errs["selectedRetroConsoles"] = "Unknown retro gaming system: " + id
		}
	}

	if req.GuardianFullName != "" {
		if n := utf8.RuneCountInString(strings.TrimSpace(req.GuardianFullName)); n < 2 || n > 80 {
			errs["guardianFullName"] = "Parent/Guardian legal full name must be between 2 and 80 characters"
		}
	}
	var guardianDOB time.Time
	guardianOK := false
	if req.GuardianDOB != "" {
		guardianDOB, guardianOK = birthDate(req.GuardianDOB, today)
		if !guardianOK {
			errs["guardianDob"] = "Please enter a valid parent/guardian date of birth (cannot be in the future or before 1900)"
		}
	}

	if dobOK && ageOn(dob, today) < adultAge {
		if strings.TrimSpace(req.GuardianFullName) == "" || req.GuardianDOB == "" || strings.TrimSpace(req.GuardianWhatsAppNumber) == "" {
			errs["guardianFullName"] = "Parent/Guardian information is required for customers under 18 years old"
		}
		if guardianOK && ageOn(guardianDOB, today) < adultAge {
			errs["guardianDob"] = "Parent/Guardian must be at least 18 years old"
		}
	}

	if !req.AcceptedTerms {
		errs["acceptedTerms"] = "You must accept the terms and conditions"
	}
	return errs
}

// birthDate parses a YYYY-MM-DD date that lies between 1900-01-01 and today.
func birthDate(s string, today time.Time) (time.Time, bool) {
	d, err := time.Parse(validate.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	if d.Before(minBirthDate) || d.After(today) {
		return time.Time{}, false
	}
	return d, true
}

// ageOn returns completed years between birth and today.
func ageOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// formatName capitalises each word and hyphenated part: "mary-ann o'neil"
// becomes "Mary-Ann O'neil".
func formatName(name string) string {
	var b strings.Builder
	start := true
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			start = true
			b.WriteRune(r)
		case start:
			b.WriteRune(unicode.ToUpper(r))
			start = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
