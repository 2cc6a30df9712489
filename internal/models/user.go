package models

// UserType labels which login surface produced the current session.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
	UserTypeNone  UserType = ""
)

// Profile is the object returned by /users/me and /admins/me. The backend
// has not settled on a single ID field name, so all three seen in the wild
// are accepted.
type Profile struct {
	UserID      string `json:"user_id"`
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Birthday    string `json:"birthday"`
	BloodType   string `json:"blood_type"`
	ShelterName string `json:"shelter_name"`
}

// Identifier returns the first non-empty ID field.
func (p *Profile) Identifier() string {
	switch {
	case p.UserID != "":
		return p.UserID
	case p.ID != "":
		return p.ID
	default:
		return p.UUID
	}
}

// LoginResponse is returned by the login endpoints.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AdminSettings is the admin settings object. StockThreshold and
// ExpireWarnDays are server-owned: the client must echo them back on save
// but never lets the user edit them.
type AdminSettings struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	AggregateRange Quantity `json:"aggregate_range"`
	StockThreshold Quantity `json:"stock_threshold"`
	ExpireWarnDays Quantity `json:"expire_warn_days"`
}

// Medication is one entry of a patient's medication plan.
type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule"`
	Category string `json:"category"`
}

// MedicalInfo is the payload encoded into a patient's QR code and returned
// by /users/qr/{id}.
type MedicalInfo struct {
	Name          string       `json:"name"`
	Birthday      string       `json:"birthday"`
	BloodType     string       `json:"blood_type"`
	AllergyName   string       `json:"allergy_name"`
	ConditionName string       `json:"condition_name"`
	Medications   []Medication `json:"medications"`
}

// Categories returns the distinct non-empty medication categories in
// first-seen order.
func (m *MedicalInfo) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, med := range m.Medications {
		if med.Category == "" || seen[med.Category] {
			continue
		}
		seen[med.Category] = true
		cats = append(cats, med.Category)
	}
	return cats
}
