package domain

// Color is an RGBA fill color; the fourth channel is opacity.
type Color [4]uint8

var (
	colorRedOrange  = Color{211, 84, 0, 250}
	colorBlue       = Color{52, 152, 219, 250}
	colorGold       = Color{200, 150, 11, 250}
	colorDarkPurple = Color{128, 0, 128, 250}
	colorPurple     = Color{155, 89, 182, 250}
	colorDarkRed    = Color{192, 57, 43, 250}
	colorRed        = Color{255, 0, 0, 250}
	colorDarkBlue   = Color{44, 62, 80, 250}
	colorGreen      = Color{46, 204, 113, 250}
	colorAlizarin   = Color{231, 76, 60, 250}

	// DefaultColor is used for any label not in the table.
	DefaultColor = Color{149, 165, 166, 250}
)

// categoryColors is keyed by lower-cased SFPD category label, including the
// historical spelling variants that still appear in the dataset.
var categoryColors = map[string]Color{
	// violent
	"assault":  colorRedOrange,
	"homicide": colorRedOrange,
	"rape":     colorRedOrange,
	"robbery":  colorRedOrange,

	// property
	"arson":                colorBlue,
	"burglary":             colorBlue,
	"larceny theft":        colorBlue,
	"motor vehicle theft":  colorBlue,
	"motor vehicle theft?": colorBlue,
	"stolen property":      colorBlue,
	"vandalism":            colorBlue,
	"vehicle misplaced":    colorBlue,

	// white collar
	"embezzlement":               colorGold,
	"forgery and counterfeiting": colorGold,
	"fraud":                      colorGold,

	// drugs
	"drug violation": colorDarkPurple,
	"drug offense":   colorDarkPurple,

	// public order
	"disorderly conduct": colorPurple,
	"gambling":           colorPurple,
	"liquor laws":        colorPurple,
	"prostitution":       colorPurple,

	// domestic
	"offences against the family and children": colorDarkRed,
	"sex offense":                               colorDarkRed,

	"human trafficking (a), commercial sex acts": colorRed,
	"human trafficking, commercial sex acts":     colorRed,

	// miscellaneous
	"civil sidewalks":             colorDarkRed,
	"courtesy report":             colorDarkRed,
	"fire report":                 colorDarkRed,
	"miscellaneous investigation": colorDarkRed,
	"missing person":              colorDarkRed,
	"non-criminal":                colorDarkRed,
	"other":                       colorDarkRed,
	"other miscellaneous":         colorDarkRed,
	"other offenses":              colorDarkRed,
	"suicide":                     colorDarkRed,
	"suspicious":                  colorDarkRed,
	"suspicious occ":              colorDarkRed,
	"traffic violation arrest":    colorDarkRed,
	"unknown":                     colorDarkRed,
	"weapons carrying etc":        colorDarkRed,
	"weapons offense":             colorDarkRed,
	"weapons offence":             colorDarkRed,

	"case closure":       colorDarkBlue,
	"lost property":      DefaultColor,
	"malicious mischief": colorRedOrange,
	"recovered vehicle":  colorGreen,
	"vehicle impounded":  colorGreen,
	"traffic collision":  colorAlizarin,
	"warrant":            colorBlue,
}

// ColorFor returns the fill color for a category label. Matching is exact
// after lower-casing; unmatched labels get DefaultColor.
func ColorFor(category string) Color {
	if c, ok := categoryColors[toLowerASCII(category)]; ok {
		return c
	}
	return DefaultColor
}

// toLowerASCII lower-cases without locale rules so "I" never becomes a
// dotless i.
func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
