package scryfall

import (
	"errors"
	"fmt"
)

// Card represents a Magic card from Scryfall. Only the fields the
// analyzer consumes are mapped; everything else in the response is
// dropped at this boundary.
type Card struct {
	ID       string `json:"id"`
	OracleID string `json:"oracle_id"`

	Name     string  `json:"name"`
	Layout   string  `json:"layout"`
	ManaCost string  `json:"mana_cost,omitempty"`
	CMC      float64 `json:"cmc"`
	TypeLine string  `json:"type_line"`

	Colors        []string `json:"colors,omitempty"`
	ColorIdentity []string `json:"color_identity"`

	SetCode string `json:"set"`
	SetName string `json:"set_name"`
	Rarity  string `json:"rarity"`

	// Card faces for DFCs, MDFCs, split and adventure cards. The
	// front face stands in when top-level cost fields are absent.
	CardFaces []CardFace `json:"card_faces,omitempty"`

	Prices Prices `json:"prices"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name     string   `json:"name"`
	ManaCost string   `json:"mana_cost,omitempty"`
	TypeLine string   `json:"type_line"`
	Colors   []string `json:"colors,omitempty"`
	CMC      *float64 `json:"cmc,omitempty"`
}

// Prices represents the prices of a card in various currencies.
// Scryfall serializes prices as strings.
type Prices struct {
	USD     *string `json:"usd,omitempty"`
	USDFoil *string `json:"usd_foil,omitempty"`
	EUR     *string `json:"eur,omitempty"`
	TIX     *string `json:"tix,omitempty"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 response from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
