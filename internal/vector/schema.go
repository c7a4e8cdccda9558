package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassName is the Weaviate class holding enriched listings.
const ClassName = "ListingEmbedding"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

func boolPtr(b bool) *bool { return &b }

func properties() []*models.Property {
	return []*models.Property{
		{
			Name:            "sourceId",
			DataType:        []string{"text"},
			Tokenization:    models.PropertyTokenizationField, // exact match on the hex id
			IndexFilterable: boolPtr(true),
		},
		{
			Name:     "title",
			DataType: []string{"text"},
		},
		{
			Name:     "city",
			DataType: []string{"text"},
		},
		{
			Name:            "metadata",
			DataType:        []string{"text"},
			IndexFilterable: boolPtr(false),
			IndexSearchable: boolPtr(false),
		},
	}
}

// EnsureSchema creates the listing class, or adds properties missing from an
// existing one. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}

	props := properties()
	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "A property listing with its description embedding",
			Vectorizer:  "none",
			Properties:  props,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range props {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return err
			}
		}
	}

	return nil
}
