package listing

import (
	"fmt"
	"strings"
)

// Describe renders p as "Label: value" lines in a fixed order. Empty and
// zero-valued fields are left out; Exclusive is always present.
func Describe(p *Property) string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, label+": "+value)
	}

	if p.Ad != nil && p.Ad.Title != "" {
		add("Title", p.Ad.Title)
	}
	if p.Ad != nil && p.Ad.Description != "" {
		add("Description", p.Ad.Description)
	}
	if loc := location(p); loc != "" {
		add("Location", loc)
	}
	if p.PropertyType != "" {
		add("Property Type", p.PropertyType)
	}
	if tt := p.TransactionType(); tt != "" {
		add("Transaction Type", tt)
	}
	if p.Area > 0 {
		add("Area", fmt.Sprintf("%.2f m²", p.Area))
	}
	if p.TotalArea > 0 {
		add("Total Area", fmt.Sprintf("%.2f m²", p.TotalArea))
	}
	if price := price(p); price != "" {
		add("Price", price)
	}
	if p.Bedrooms > 0 {
		add("Bedrooms", fmt.Sprintf("%d", p.Bedrooms))
	}
	if p.Suites > 0 {
		add("Suites", fmt.Sprintf("%d", p.Suites))
	}
	if p.Bathrooms > 0 {
		add("Bathrooms", fmt.Sprintf("%d", p.Bathrooms))
	}
	if p.ParkingSpots > 0 {
		add("Parking Spots", fmt.Sprintf("%d", p.ParkingSpots))
	}
	if p.Building != "" {
		add("Building", p.Building)
	}
	add("Exclusive", yesNo(p.IsExclusive))
	if features := joinNonEmpty(p.Features); features != "" {
		add("Features", features)
	}

	return strings.Join(lines, "\n")
}

func location(p *Property) string {
	return joinNonEmpty([]string{p.Region, p.City, p.State})
}

// price picks the rent price for rentals and the asking price otherwise.
// A rental with no rent price falls back to its asking price.
func price(p *Property) string {
	isRent := strings.Contains(strings.ToLower(p.TransactionType()), "rent")
	if isRent && p.RentPrice > 0 {
		return fmt.Sprintf("Rent $%.2f", p.RentPrice)
	}
	if p.AskingPrice > 0 {
		return fmt.Sprintf("Sale $%.2f", p.AskingPrice)
	}
	return ""
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
