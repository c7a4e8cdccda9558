package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propembed/internal/listing"
)

func TestDescribe_FullRecord(t *testing.T) {
	p := &listing.Property{
		Ad: &listing.Ad{
			Title:           "Sunny flat",
			Description:     "Close to the park",
			TransactionType: "Sale",
		},
		Region:       "Centro",
		City:         "Curitiba",
		State:        "PR",
		PropertyType: "Apartment",
		Area:         72.5,
		TotalArea:    90,
		AskingPrice:  450000,
		RentPrice:    2500,
		Bedrooms:     2,
		Suites:       1,
		Bathrooms:    2,
		ParkingSpots: 1,
		Building:     "Ed. Aurora",
		IsExclusive:  true,
		Features:     []string{"Pool", "Gym"},
	}

	want := "Title: Sunny flat\n" +
		"Description: Close to the park\n" +
		"Location: Centro, Curitiba, PR\n" +
		"Property Type: Apartment\n" +
		"Transaction Type: Sale\n" +
		"Area: 72.50 m²\n" +
		"Total Area: 90.00 m²\n" +
		"Price: Sale $450000.00\n" +
		"Bedrooms: 2\n" +
		"Suites: 1\n" +
		"Bathrooms: 2\n" +
		"Parking Spots: 1\n" +
		"Building: Ed. Aurora\n" +
		"Exclusive: Yes\n" +
		"Features: Pool, Gym"

	assert.Equal(t, want, listing.Describe(p))
}

func TestDescribe_OmitsEmptyFields(t *testing.T) {
	p := &listing.Property{City: "Recife"}

	assert.Equal(t, "Location: Recife\nExclusive: No", listing.Describe(p))
}

func TestDescribe_EmptyRecord(t *testing.T) {
	assert.Equal(t, "Exclusive: No", listing.Describe(&listing.Property{}))
}

func TestDescribe_Price(t *testing.T) {
	tests := []struct {
		name string
		p    listing.Property
		want string
	}{
		{
			name: "rent uses rent price",
			p:    listing.Property{Ad: &listing.Ad{TransactionType: "For RENT"}, RentPrice: 1800, AskingPrice: 300000},
			want: "Price: Rent $1800.00",
		},
		{
			name: "rent without rent price falls back to asking price",
			p:    listing.Property{Ad: &listing.Ad{TransactionType: "rent"}, AskingPrice: 300000},
			want: "Price: Sale $300000.00",
		},
		{
			name: "sale ignores rent price",
			p:    listing.Property{Ad: &listing.Ad{TransactionType: "sale"}, RentPrice: 1800},
			want: "",
		},
		{
			name: "no ad uses asking price",
			p:    listing.Property{AskingPrice: 99.5},
			want: "Price: Sale $99.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listing.Describe(&tt.p)
			if tt.want == "" {
				assert.NotContains(t, got, "Price:")
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestDescribe_Deterministic(t *testing.T) {
	p := &listing.Property{
		Ad:       &listing.Ad{Title: "A"},
		State:    "SP",
		Features: []string{"x", "", "y"},
		Extra:    map[string]interface{}{"b": 1, "a": 2},
	}

	first := listing.Describe(p)
	second := listing.Describe(p)
	assert.Equal(t, []byte(first), []byte(second))
	assert.Contains(t, first, "Features: x, y")
}
