// Package geo holds country reference data shared by validation and the venue guard.
package geo

import "strings"

// iso3166Alpha2 is the full ISO-3166-1 alpha-2 assignment set, lower case.
var iso3166Alpha2 = map[string]struct{}{}

func init() {
	codes := strings.Fields(`
		ad ae af ag ai al am ao aq ar as at au aw ax az
		ba bb bd be bf bg bh bi bj bl bm bn bo bq br bs bt bv bw by bz
		ca cc cd cf cg ch ci ck cl cm cn co cr cu cv cw cx cy cz
		de dj dk dm do dz ec ee eg eh er es et fi fj fk fm fo fr
		ga gb gd ge gf gg gh gi gl gm gn gp gq gr gs gt gu gw gy
		hk hm hn hr ht hu id ie il im in io iq ir is it je jm jo jp
		ke kg kh ki km kn kp kr kw ky kz la lb lc li lk lr ls lt lu lv ly
		ma mc md me mf mg mh mk ml mm mn mo mp mq mr ms mt mu mv mw mx my mz
		na nc ne nf ng ni nl no np nr nu nz om pa pe pf pg ph pk pl pm pn pr ps pt pw py
		qa re ro rs ru rw sa sb sc sd se sg sh si sj sk sl sm sn so sr ss st sv sx sy sz
		tc td tf tg th tj tk tl tm tn to tr tt tv tw tz
		ua ug um us uy uz va vc ve vg vi vn vu wf ws ye yt za zm zw`)
	for _, c := range codes {
		iso3166Alpha2[c] = struct{}{}
	}
}

// ValidCountry reports whether code is an assigned ISO-3166-1 alpha-2 code (case-insensitive).
func ValidCountry(code string) bool {
	if len(code) != 2 {
		return false
	}
	_, ok := iso3166Alpha2[strings.ToLower(code)]
	return ok
}

// countryNames maps a few English country names seen in scraped venue blocks
// to their alpha-2 code. Extended as mismatches show up in production logs.
var countryNames = map[string]string{
	"germany":        "de",
	"deutschland":    "de",
	"france":         "fr",
	"united kingdom": "gb",
	"great britain":  "gb",
	"england":        "gb",
	"netherlands":    "nl",
	"belgium":        "be",
	"austria":        "at",
	"switzerland":    "ch",
	"spain":          "es",
	"italy":          "it",
	"poland":         "pl",
	"sweden":         "se",
	"denmark":        "dk",
	"norway":         "no",
	"finland":        "fi",
	"portugal":       "pt",
	"ireland":        "ie",
	"czech republic": "cz",
	"czechia":        "cz",
	"united states":  "us",
	"usa":            "us",
	"canada":         "ca",
	"australia":      "au",
	"singapore":      "sg",
	"japan":          "jp",
}

// CountryFromName resolves an English country name to its alpha-2 code.
func CountryFromName(name string) (string, bool) {
	code, ok := countryNames[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// canonicalNames is the code -> English name direction, one name per code.
var canonicalNames = map[string]string{
	"de": "germany", "fr": "france", "gb": "united kingdom", "nl": "netherlands",
	"be": "belgium", "at": "austria", "ch": "switzerland", "es": "spain",
	"it": "italy", "pl": "poland", "se": "sweden", "dk": "denmark",
	"no": "norway", "fi": "finland", "pt": "portugal", "ie": "ireland",
	"cz": "czech republic", "us": "united states", "ca": "canada",
	"au": "australia", "sg": "singapore", "jp": "japan",
}

// CountryName returns the English name for codes the shard vocabulary covers.
func CountryName(code string) (string, bool) {
	name, ok := canonicalNames[strings.ToLower(code)]
	return name, ok
}
