package app

import (
	"regexp"
	"strings"

	"kingston_guide/internal/domain"
)

// Canadian postal code, e.g. "K7L 3N6".
var postalCodeRE = regexp.MustCompile(`[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d`)

// Province names and abbreviations, normalized to the short form.
var canadianProvinces = map[string]string{
	"ON": "ON", "Ontario": "ON",
	"BC": "BC", "British Columbia": "BC",
	"AB": "AB", "Alberta": "AB",
	"SK": "SK", "Saskatchewan": "SK",
	"MB": "MB", "Manitoba": "MB",
	"QC": "QC", "Quebec": "QC",
	"NB": "NB", "New Brunswick": "NB",
	"NS": "NS", "Nova Scotia": "NS",
	"PE": "PE", "Prince Edward Island": "PE",
	"NL": "NL", "Newfoundland and Labrador": "NL",
	"YT": "YT", "Yukon": "YT",
	"NT": "NT", "Northwest Territories": "NT",
	"NU": "NU", "Nunavut": "NU",
}

// ParseAddress extracts a structured address, preferring the typed
// components and falling back to splitting the formatted string.
func ParseAddress(components []domain.GoogleAddressComponent, formatted string) domain.Address {
	if len(components) == 0 {
		return ParseAddressString(formatted)
	}

	var addr domain.Address
	var streetNumber, route string

	for _, c := range components {
		switch {
		case hasType(c.Types, "street_number"):
			streetNumber = c.LongName
		case hasType(c.Types, "route"):
			route = c.LongName
		case hasType(c.Types, "locality") || hasType(c.Types, "sublocality"):
			if addr.City == "" {
				addr.City = c.LongName
			}
		case hasType(c.Types, "administrative_area_level_1"):
			addr.Province = c.ShortName
		case hasType(c.Types, "postal_code"):
			addr.PostalCode = c.LongName
		case hasType(c.Types, "country"):
			addr.Country = c.LongName
		}
	}

	addr.Street = strings.TrimSpace(strings.Join(nonEmpty(streetNumber, route), " "))
	if addr.Street == "" && formatted != "" {
		if parts := strings.Split(formatted, ","); len(parts) > 0 {
			addr.Street = strings.TrimSpace(parts[0])
		}
	}
	return addr
}

// ParseAddressString parses a single formatted-address line by comma
// splitting and pattern matching. Tuned for Canadian addresses; country
// defaults to Canada when undetermined.
func ParseAddressString(formatted string) domain.Address {
	var addr domain.Address
	if formatted == "" {
		return addr
	}

	parts := strings.Split(formatted, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// First segment is the street line.
	addr.Street = parts[0]

	for i := 1; i < len(parts); i++ {
		part := parts[i]

		if m := postalCodeRE.FindString(part); m != "" {
			addr.PostalCode = strings.ToUpper(m)
			before := strings.TrimSpace(postalCodeRE.ReplaceAllString(part, ""))
			if short, ok := canadianProvinces[before]; ok {
				addr.Province = short
			}
			continue
		}

		if i == len(parts)-1 {
			low := strings.ToLower(part)
			if low == "canada" || low == "usa" {
				addr.Country = part
				continue
			}
		}

		if short, rest, matched := matchProvince(part); matched {
			addr.Province = short
			if rest != "" && addr.City == "" {
				addr.City = rest
			}
			continue
		}

		if addr.City == "" {
			addr.City = part
		}
	}

	if addr.Country == "" {
		addr.Country = "Canada"
	}
	return addr
}

// matchProvince recognizes a province inside one comma segment and returns
// the leftover text, which is usually the city ("Kingston Ontario").
func matchProvince(part string) (short, rest string, ok bool) {
	if s, exact := canadianProvinces[part]; exact {
		return s, "", true
	}
	// Full names may be embedded; abbreviations are too short to
	// substring-match safely, so only accept them as the trailing word.
	for name, s := range canadianProvinces {
		if len(name) > 2 && strings.Contains(part, name) {
			return s, strings.TrimSpace(strings.ReplaceAll(part, name, "")), true
		}
	}
	if fields := strings.Fields(part); len(fields) > 1 {
		if s, exact := canadianProvinces[fields[len(fields)-1]]; exact {
			return s, strings.Join(fields[:len(fields)-1], " "), true
		}
	}
	return "", "", false
}

func hasType(types []string, t string) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
