// Package listing holds the property listing model read from the source
// collection and the deterministic text built from it for embedding.
package listing

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SourceIDField is the target-store path holding the source listing id.
const SourceIDField = "metadata._id"

// Property is the typed view of a source listing used to build its
// description. Fields it does not declare land in Extra.
type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Region       string             `bson:"region,omitempty" json:"region,omitempty"`
	City         string             `bson:"city,omitempty" json:"city,omitempty"`
	State        string             `bson:"state,omitempty" json:"state,omitempty"`
	Ad           *Ad                `bson:"ad,omitempty" json:"ad,omitempty"`
	Company      *Company           `bson:"company,omitempty" json:"company,omitempty"`
	CompanyID    string             `bson:"companyId,omitempty" json:"companyId,omitempty"`
	Agent        *Agent             `bson:"agent,omitempty" json:"agent,omitempty"`
	Images       []interface{}      `bson:"images,omitempty" json:"images,omitempty"`
	Area         float64            `bson:"area,omitempty" json:"area,omitempty"`
	RentPrice    float64            `bson:"rentPrice,omitempty" json:"rentPrice,omitempty"`
	AskingPrice  float64            `bson:"askingPrice,omitempty" json:"askingPrice,omitempty"`
	CommercialID string             `bson:"commercialId,omitempty" json:"commercialId,omitempty"`
	TotalArea    float64            `bson:"totalArea,omitempty" json:"totalArea,omitempty"`
	Suites       int                `bson:"suites,omitempty" json:"suites,omitempty"`
	Bedrooms     int                `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    int                `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	ParkingSpots int                `bson:"parkingSpots,omitempty" json:"parkingSpots,omitempty"`
	IsExclusive  bool               `bson:"isExclusive,omitempty" json:"isExclusive,omitempty"`
	Building     string             `bson:"building,omitempty" json:"building,omitempty"`
	CondoFee     *float64           `bson:"condoFee,omitempty" json:"condoFee,omitempty"`
	Tax          *float64           `bson:"tax,omitempty" json:"tax,omitempty"`
	Features     []string           `bson:"features,omitempty" json:"features,omitempty"`
	PropertyType string             `bson:"propertyType,omitempty" json:"propertyType,omitempty"`

	Extra map[string]interface{} `bson:",inline" json:"-"`
}

type Ad struct {
	Title           string `bson:"title,omitempty" json:"title,omitempty"`
	Description     string `bson:"description,omitempty" json:"description,omitempty"`
	TransactionType string `bson:"transactionType,omitempty" json:"transactionType,omitempty"`
}

type Company struct {
	Name      string  `bson:"name,omitempty" json:"name,omitempty"`
	SmallLogo string  `bson:"smallLogo,omitempty" json:"smallLogo,omitempty"`
	LargeLogo *string `bson:"largeLogo,omitempty" json:"largeLogo,omitempty"`
}

type Agent struct {
	ID   string `bson:"id,omitempty" json:"id,omitempty"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// EnrichedRecord is the document written to the target store. Metadata is
// the source document byte for byte; Listing is its decoded form and is not
// stored.
type EnrichedRecord struct {
	Metadata   bson.Raw  `bson:"metadata" json:"metadata"`
	Embeddings []float32 `bson:"embeddings" json:"embeddings"`

	Listing Property `bson:"-" json:"-"`
}

// DecodeProperty reads the typed view of a source document.
func DecodeProperty(raw bson.Raw) (Property, error) {
	var p Property
	err := bson.Unmarshal(raw, &p)
	return p, err
}

// NewEnrichedRecord pairs a source document with its embedding.
func NewEnrichedRecord(raw bson.Raw, embeddings []float32) (EnrichedRecord, error) {
	p, err := DecodeProperty(raw)
	if err != nil {
		return EnrichedRecord{}, err
	}
	return EnrichedRecord{Metadata: raw, Embeddings: embeddings, Listing: p}, nil
}

func (p *Property) Title() string {
	if p.Ad == nil {
		return ""
	}
	return p.Ad.Title
}

func (p *Property) TransactionType() string {
	if p.Ad == nil {
		return ""
	}
	return p.Ad.TransactionType
}
