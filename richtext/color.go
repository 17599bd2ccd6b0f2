package richtext

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Black is computed form of the initial text color.
const Black = "rgb(0, 0, 0)"

// NormalizeColor converts CSS color value to the form computed style uses:
// "rgb(r, g, b)" for opaque colors and "rgba(r, g, b, a)" otherwise.
// Values which could not be understood return false.
func NormalizeColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return "", false
	case v == "transparent":
		return "rgba(0, 0, 0, 0)", true
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseRGBFunc(v)
	case strings.HasPrefix(v, "hsl(") || strings.HasPrefix(v, "hsla("):
		return parseHueFunc(v, hslToRGB)
	case strings.HasPrefix(v, "hwb("):
		return parseHueFunc(v, hwbToRGB)
	}
	if c, ok := colornames.Map[v]; ok {
		return formatRGBA(c.R, c.G, c.B, 1), true
	}
	return "", false
}

func formatRGBA(r, g, b uint8, a float64) string {
	if a >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64))
}

func parseHex(h string) (string, bool) {
	expand := func(s string) string {
		var sb strings.Builder
		for _, c := range s {
			sb.WriteRune(c)
			sb.WriteRune(c)
		}
		return sb.String()
	}
	switch len(h) {
	case 3, 4:
		h = expand(h)
	case 6, 8:
	default:
		return "", false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "", false
	}
	if len(h) == 6 {
		n = n<<8 | 0xff
	}
	c := color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}
	return formatRGBA(c.R, c.G, c.B, float64(c.A)/255), true
}

// parseRGBFunc handles both legacy comma separated and modern space
// separated notations, with numbers or percentages.
func parseRGBFunc(v string) (string, bool) {
	args, ok := funcArgs(v)
	if !ok {
		return "", false
	}

	var rgb [3]uint8
	for i := range 3 {
		f, pct, ok := parseNumber(args[i])
		if !ok {
			return "", false
		}
		if pct {
			f = f * 255 / 100
		}
		rgb[i] = uint8(math.Round(math.Max(0, math.Min(255, f))))
	}
	alpha, ok := parseAlpha(args)
	if !ok {
		return "", false
	}
	return formatRGBA(rgb[0], rgb[1], rgb[2], alpha), true
}

// funcArgs splits arguments of color function, separators could be commas,
// spaces or slash before alpha.
func funcArgs(v string) ([]string, bool) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return nil, false
	}
	args := strings.FieldsFunc(v[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	return args, len(args) == 3 || len(args) == 4
}

func parseAlpha(args []string) (float64, bool) {
	if len(args) < 4 {
		return 1, true
	}
	f, pct, ok := parseNumber(args[3])
	if !ok {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return math.Max(0, math.Min(1, f)), true
}

// parseHueFunc handles hsl(), hsla() and hwb(). Second and third arguments
// are percentages (bare numbers accepted), conv gets hue in degrees and
// both as fractions.
func parseHueFunc(v string, conv func(h, a, b float64) (float64, float64, float64)) (string, bool) {
	args, ok := funcArgs(v)
	if !ok {
		return "", false
	}
	h, ok := parseHue(args[0])
	if !ok {
		return "", false
	}
	var p [2]float64
	for i := range 2 {
		f, _, ok := parseNumber(args[i+1])
		if !ok {
			return "", false
		}
		p[i] = math.Max(0, math.Min(100, f)) / 100
	}
	alpha, ok := parseAlpha(args)
	if !ok {
		return "", false
	}
	r, g, b := conv(h, p[0], p[1])
	return formatRGBA(channel(r), channel(g), channel(b), alpha), true
}

func channel(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// parseHue returns hue in degrees normalized to [0, 360).
func parseHue(s string) (float64, bool) {
	scale := 1.0
	for _, u := range []struct {
		suffix string
		scale  float64
	}{{"deg", 1}, {"grad", 0.9}, {"rad", 180 / math.Pi}, {"turn", 360}} {
		if strings.HasSuffix(s, u.suffix) {
			s, scale = strings.TrimSuffix(s, u.suffix), u.scale
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	f = math.Mod(f*scale, 360)
	if f < 0 {
		f += 360
	}
	return f, true
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	f := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		a := s * math.Min(l, 1-l)
		return l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
	}
	return f(0), f(8), f(4)
}

func hwbToRGB(h, w, b float64) (float64, float64, float64) {
	if w+b >= 1 {
		gray := w / (w + b)
		return gray, gray, gray
	}
	r, g, bl := hslToRGB(h, 1, 0.5)
	scale := func(c float64) float64 { return c*(1-w-b) + w }
	return scale(r), scale(g), scale(bl)
}

func parseNumber(s string) (float64, bool, bool) {
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	return f, pct, err == nil
}
