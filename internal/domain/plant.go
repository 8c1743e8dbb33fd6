package domain

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultNearbyRadiusKm = 5.0

type Plant struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	ImageURL            string    `json:"image_url" db:"image_url"`
	ScientificName      string    `json:"scientific_name" db:"scientific_name"`
	CommonName          *string   `json:"common_name,omitempty" db:"common_name"`
	WikiDescription     *string   `json:"wiki_description,omitempty" db:"wiki_description"`
	WikiURL             *string   `json:"wiki_url,omitempty" db:"wiki_url"`
	Family              *string   `json:"family,omitempty" db:"family"`
	Genus               *string   `json:"genus,omitempty" db:"genus"`
	CareInstructions    *string   `json:"care_instructions,omitempty" db:"care_instructions"`
	EnhancedDescription *string   `json:"enhanced_description,omitempty" db:"enhanced_description"`
	Latitude            float64   `json:"latitude" db:"latitude"`
	Longitude           float64   `json:"longitude" db:"longitude"`
	LocationName        *string   `json:"location_name,omitempty" db:"location_name"`
	CityName            *string   `json:"city_name,omitempty" db:"city_name"`
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// PlantInput carries the editable fields of a plant. It is used for both
// create and update; update replaces every field.
type PlantInput struct {
	ScientificName      string  `json:"scientific_name" form:"scientific_name"`
	CommonName          *string `json:"common_name,omitempty" form:"common_name"`
	WikiDescription     *string `json:"wiki_description,omitempty" form:"wiki_description"`
	WikiURL             *string `json:"wiki_url,omitempty" form:"wiki_url"`
	Family              *string `json:"family,omitempty" form:"family"`
	Genus               *string `json:"genus,omitempty" form:"genus"`
	CareInstructions    *string `json:"care_instructions,omitempty" form:"care_instructions"`
	EnhancedDescription *string `json:"enhanced_description,omitempty" form:"enhanced_description"`
	Latitude            float64 `json:"latitude" form:"latitude"`
	Longitude           float64 `json:"longitude" form:"longitude"`
	LocationName        *string `json:"location_name,omitempty" form:"location_name"`
	CityName            *string `json:"city_name,omitempty" form:"city_name"`
}

func (in PlantInput) Validate() error {
	if strings.TrimSpace(in.ScientificName) == "" {
		return NewValidationError("scientific_name", "scientific name is required")
	}
	return nil
}

// Apply copies the input onto p. Identity, owner, image and creation time are
// left untouched.
func (in PlantInput) Apply(p *Plant) {
	p.ScientificName = strings.TrimSpace(in.ScientificName)
	p.CommonName = in.CommonName
	p.WikiDescription = in.WikiDescription
	p.WikiURL = in.WikiURL
	p.Family = in.Family
	p.Genus = in.Genus
	p.CareInstructions = in.CareInstructions
	p.EnhancedDescription = in.EnhancedDescription
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.LocationName = in.LocationName
	p.CityName = in.CityName
}

// ImageUpload is an uploaded image waiting to be handed to the blob store.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func (u *ImageUpload) Empty() bool {
	return u == nil || u.Size <= 0 || u.Open == nil
}

type NearbyQuery struct {
	Latitude  float64 `query:"lat"`
	Longitude float64 `query:"lon"`
	RadiusKm  float64 `query:"radius"`
}

// RadiusOr returns the requested radius, or fallback when none was given.
func (q NearbyQuery) RadiusOr(fallback float64) float64 {
	if q.RadiusKm > 0 {
		return q.RadiusKm
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultNearbyRadiusKm
}
