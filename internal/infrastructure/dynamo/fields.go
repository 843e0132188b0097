package dynamo

// DynamoDB attribute names used in key conditions and update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldPhoneNumber    = "phone_number"
	fieldVerificationID = "verification_id"
	fieldAttempts       = "attempts"
	fieldVerified       = "verified"
	fieldVerifiedAt     = "verified_at"
	fieldPurgeAt        = "purge_at"

	fieldCustomerID     = "customer_id"
	fieldWhatsAppNumber = "whatsapp_number"
	fieldEmail          = "email"
	fieldUniqueKey      = "unique_key"
)
