package member

import "time"

// PermitType is the membership category a member holds. The zero value
// means the member has not been assigned a category yet.
type PermitType string

const (
	PermitNone           PermitType = ""
	PermitLocalSenior    PermitType = "Local Senior"
	PermitLocalAdult     PermitType = "Local Adult"
	PermitVisitingAdult  PermitType = "Visiting Adult"
	PermitVisitingSenior PermitType = "Visiting Senior"
)

type Member struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	PermitType   PermitType `json:"permitType"`
	Renewed      bool       `json:"renewed"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
