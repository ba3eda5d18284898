package handler

import (
	"time"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
)

// UserDTO is the public JSON representation of a user. The password hash
// never leaves the server.
type UserDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	City           string `json:"city"`
	Phone          string `json:"phone,omitempty"`
	About          string `json:"about,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		City:           u.City,
		Phone:          u.Phone,
		About:          u.About,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
}

// ServiceDTO is the JSON representation of a service listing.
type ServiceDTO struct {
	ID          string `json:"id"`
	ProviderID  string `json:"providerId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Trade       string `json:"trade"`
	CreatedAt   string `json:"createdAt"`
}

func toServiceDTO(s domain.Service) ServiceDTO {
	return ServiceDTO{
		ID:          s.ID,
		ProviderID:  s.ProviderID,
		Title:       s.Title,
		Description: s.Description,
		Trade:       s.Trade,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func toServiceDTOs(services []domain.Service) []ServiceDTO {
	dtos := make([]ServiceDTO, len(services))
	for i, s := range services {
		dtos[i] = toServiceDTO(s)
	}
	return dtos
}

// ProviderMatchDTO is one provider of a search result with its matching
// services.
type ProviderMatchDTO struct {
	Provider UserDTO      `json:"provider"`
	Services []ServiceDTO `json:"services"`
}

// SearchResultDTO is the JSON representation of a search.
type SearchResultDTO struct {
	Trade     string             `json:"trade"`
	City      string             `json:"city"`
	Providers []ProviderMatchDTO `json:"providers"`
}

func toSearchResultDTO(res *service.SearchResult) SearchResultDTO {
	dto := SearchResultDTO{
		Trade:     res.Trade,
		City:      res.City,
		Providers: make([]ProviderMatchDTO, len(res.Providers)),
	}
	for i, m := range res.Providers {
		dto.Providers[i] = ProviderMatchDTO{
			Provider: toUserDTO(&m.Provider),
			Services: toServiceDTOs(m.Services),
		}
	}
	return dto
}
