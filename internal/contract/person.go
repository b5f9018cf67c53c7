package contract

import (
	"time"

	"github.com/alexanderramin/ambitions/internal/domain"
)

type PersonResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	ManagerID string    `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromPerson(p *domain.Person) PersonResponse {
	resp := PersonResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
	if p.ManagerID != nil {
		resp.ManagerID = *p.ManagerID
	}
	return resp
}

func FromPeople(people []*domain.Person) []PersonResponse {
	out := make([]PersonResponse, 0, len(people))
	for _, p := range people {
		out = append(out, FromPerson(p))
	}
	return out
}
