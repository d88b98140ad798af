package providers

import (
	"strings"

	"golang.org/x/text/language"
)

// DataForSEO location codes for common countries
var locationCodes = map[string]int{
	"us": 2840, // United States
	"uk": 2826, // United Kingdom
	"gb": 2826, // United Kingdom (alt)
	"ca": 2124, // Canada
	"au": 2036, // Australia
	"de": 2276, // Germany
	"fr": 2250, // France
	"es": 2724, // Spain
	"it": 2380, // Italy
	"jp": 2392, // Japan
	"br": 2076, // Brazil
	"in": 2356, // India
	"mx": 2484, // Mexico
	"nl": 2528, // Netherlands
	"se": 2752, // Sweden
	"pl": 2616, // Poland
	"ch": 2756, // Switzerland
	"at": 2040, // Austria
	"be": 2056, // Belgium
	"pt": 2620, // Portugal
	"dk": 2208, // Denmark
	"no": 2578, // Norway
	"fi": 2246, // Finland
	"ie": 2372, // Ireland
	"nz": 2554, // New Zealand
	"sg": 2702, // Singapore
	"hk": 2344, // Hong Kong
	"kr": 2410, // South Korea
	"tw": 2158, // Taiwan
	"ae": 2784, // UAE
	"za": 2710, // South Africa
	"ar": 2032, // Argentina
	"cl": 2152, // Chile
	"co": 2170, // Colombia
}

// Provider-specific spellings that differ from the bare BCP 47 base
var languageOverrides = map[string]string{
	"zh": "zh-CN",
}

const defaultLocationCode = 2840 // United States

// LocationCode maps a country code to the provider's location code,
// defaulting to the United States for unknown countries.
func LocationCode(country string) int {
	if code, ok := locationCodes[strings.ToLower(country)]; ok {
		return code
	}
	return defaultLocationCode
}

// LanguageCode normalizes a language identifier to the provider's expected
// code: BCP 47 parsing reduces variants like "en-US" to their base, with a
// small override table for spellings the provider insists on.
func LanguageCode(lang string) string {
	lowered := strings.ToLower(lang)

	base := lowered
	if tag, err := language.Parse(lowered); err == nil {
		if b, conf := tag.Base(); conf != language.No {
			base = b.String()
		}
	}

	if override, ok := languageOverrides[base]; ok {
		return override
	}
	return base
}
