package domain

import (
	"fmt"
	"strings"
	"time"
)

// Person is a directory entry for someone who can own or approve goals.
type Person struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	ManagerID *string
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an email for comparison and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two emails the way identity assertions are matched.
func SameEmail(a, b string) bool {
	a, b = NormalizeEmail(a), NormalizeEmail(b)
	return a != "" && a == b
}

func (p *Person) Validate() error {
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("email %q is not a valid address", p.Email)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.ManagerID != nil && *p.ManagerID == p.ID {
		return fmt.Errorf("person cannot manage themselves")
	}
	return nil
}
