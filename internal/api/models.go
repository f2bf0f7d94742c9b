package api

import (
	"encoding/json"

	"jobportal/internal/auth"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration is the payload of POST /register and POST /users/.
type Registration struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      auth.Role `json:"role"`
}

type UserUpdate struct {
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      auth.Role `json:"role,omitempty"`
}

type JobOffer struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Criteria    json.RawMessage `json:"criteria"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   auth.Timestamp  `json:"created_at"`
}

// JobOfferInput carries criteria as raw JSON because the backend accepts
// either a string or an object there.
type JobOfferInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Criteria    json.RawMessage `json:"criteria"`
}

type Application struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	OfferID       string         `json:"offer_id"`
	CoverLetter   string         `json:"cover_letter"`
	MatchingScore float64        `json:"matching_score"`
	CreatedAt     auth.Timestamp `json:"created_at"`
}

type ApplicationInput struct {
	UserID        string  `json:"user_id"`
	OfferID       string  `json:"offer_id"`
	CoverLetter   string  `json:"cover_letter"`
	MatchingScore float64 `json:"matching_score"`
}

// CV is a CV listing entry; the binary content is fetched separately.
type CV struct {
	ID         string          `json:"_id"`
	Filename   string          `json:"filename"`
	UploadDate auth.Timestamp  `json:"upload_date"`
	UserID     string          `json:"user_id"`
	ParsedInfo json.RawMessage `json:"parsed_info,omitempty"`
}

type UploadResult struct {
	CVID    string `json:"cv_id"`
	Message string `json:"message"`
}

// Blob is an opaque binary download.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

type MatchRun struct {
	Message    string `json:"message"`
	MatchedCVs int    `json:"matched_cvs"`
	Matches    int    `json:"matches"`
}

type Match struct {
	JobOfferID  string  `json:"job_offer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type MatchResults struct {
	Message string  `json:"message"`
	Matches []Match `json:"matches"`
}
