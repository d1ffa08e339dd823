package public

import (
	"time"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

type locationResponse struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address"`
}

type storeResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Location    locationResponse `json:"location"`
	Photo       string           `json:"photo,omitempty"`
	Author      string           `json:"author"`
	Reviews     []reviewResponse `json:"reviews,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type storeSummaryResponse struct {
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Location    locationResponse `json:"location"`
	Photo       string           `json:"photo,omitempty"`
}

type rankedStoreResponse struct {
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Photo         string  `json:"photo,omitempty"`
	ReviewCount   int     `json:"reviewCount"`
	AverageRating float64 `json:"averageRating"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type tagCountResponse struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type storePageResponse struct {
	Stores   []storeResponse `json:"stores"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	PageSize int             `json:"pageSize"`
	Total    int64           `json:"total"`
}

type tagBrowseResponse struct {
	Tag    string             `json:"tag,omitempty"`
	Tags   []tagCountResponse `json:"tags"`
	Stores []storeResponse    `json:"stores"`
}

type userResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Hearts []string `json:"hearts"`
}

type createStoreRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Longitude   float64  `json:"lng"`
	Latitude    float64  `json:"lat"`
	Address     string   `json:"address"`
	Photo       string   `json:"photo"`
}

type updateStoreRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Longitude   *float64  `json:"lng"`
	Latitude    *float64  `json:"lat"`
	Address     *string   `json:"address"`
	Photo       *string   `json:"photo"`
}

type createReviewRequest struct {
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

func toLocationResponse(l domain.Location) locationResponse {
	return locationResponse{Type: l.Type, Coordinates: l.Coordinates, Address: l.Address}
}

func toStoreResponse(s domain.Store) storeResponse {
	resp := storeResponse{
		ID:          s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Tags:        s.Tags,
		Location:    toLocationResponse(s.Location),
		Photo:       s.Photo,
		Author:      s.AuthorID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for _, review := range s.Reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(review))
	}
	return resp
}

func toStoreResponses(stores []domain.Store) []storeResponse {
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}
	return out
}

func toReviewResponse(r domain.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		StoreID:   r.StoreID,
		Author:    r.AuthorID,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

func toUserResponse(u domain.User) userResponse {
	hearts := u.Hearts
	if hearts == nil {
		hearts = []string{}
	}
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Hearts: hearts}
}
