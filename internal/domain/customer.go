package domain

import "time"

// Shop categories stored on a customer profile.
const (
	CategoryVideoGames = "video_games"
	CategoryGiftCards  = "gift_cards"
)

type Customer struct {
	CustomerID             string         `json:"id" dynamodbav:"customer_id"`
	FullName               string         `json:"full_name" dynamodbav:"full_name"`
	Email                  *string        `json:"email,omitempty" dynamodbav:"email,omitempty"`
	DateOfBirth            string         `json:"date_of_birth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	WhatsAppNumber         string         `json:"whatsapp_number" dynamodbav:"whatsapp_number"`
	IsMinor                bool           `json:"is_minor" dynamodbav:"is_minor"`
	GuardianFullName       *string        `json:"guardian_full_name,omitempty" dynamodbav:"guardian_full_name,omitempty"`
	GuardianDateOfBirth    *string        `json:"guardian_date_of_birth,omitempty" dynamodbav:"guardian_date_of_birth,omitempty"`
	GuardianWhatsAppNumber *string        `json:"guardian_whatsapp_number,omitempty" dynamodbav:"guardian_whatsapp_number,omitempty"`
	TermsAccepted          bool           `json:"terms_accepted" dynamodbav:"terms_accepted"`
	TermsAcceptedAt        time.Time      `json:"terms_accepted_at" dynamodbav:"terms_accepted_at"`
	ShopCategories         []string       `json:"shop_categories" dynamodbav:"shop_categories"`
	GiftCards              []GiftCardPick `json:"gift_cards" dynamodbav:"gift_cards"`
	Consoles               []string       `json:"consoles" dynamodbav:"consoles"`
	RetroConsoles          []string       `json:"retro_consoles" dynamodbav:"retro_consoles"`
	CreatedAt              time.Time      `json:"created" dynamodbav:"created_at"`
	UpdatedAt              time.Time      `json:"updated" dynamodbav:"updated_at"`
}

// GiftCardPick is one gift card the customer buys, with the optional account
// name the card is delivered to.
type GiftCardPick struct {
	ID       string  `json:"id" dynamodbav:"id"`
	Username *string `json:"username,omitempty" dynamodbav:"username,omitempty"`
}

// CreateCustomerRequest mirrors the public intake form.
type CreateCustomerRequest struct {
	FullName               string            `json:"fullName" validate:"required"`
	Email                  string            `json:"email" validate:"omitempty,email"`
	DOB                    string            `json:"dob" validate:"required,isodate"`
	WhatsAppNumber         string            `json:"whatsappNumber" validate:"required"`
	PurchaseGiftCards      string            `json:"purchaseGiftCards" validate:"omitempty,oneof=yes no"`
	SelectedGiftCards      []string          `json:"selectedGiftCards"`
	GiftCardUsernames      map[string]string `json:"giftCardUsernames"`
	SelectedConsoles       []string          `json:"selectedConsoles"`
	SelectedRetroConsoles  []string          `json:"selectedRetroConsoles"`
	GuardianFullName       string            `json:"guardianFullName"`
	GuardianDOB            string            `json:"guardianDob" validate:"omitempty,isodate"`
	GuardianWhatsAppNumber string            `json:"guardianWhatsappNumber"`
	AcceptedTerms          bool              `json:"acceptedTerms"`
}

// CustomerPage is one page of an admin listing.
type CustomerPage struct {
	Data       []Customer `json:"data"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
