package keys

// Virtual keycodes as reported by the event hook on macOS.
var rawcodes = map[string]uint16{
	"ctrl":   59,
	"rctrl":  62,
	"shift":  56,
	"rshift": 60,
	"alt":    58,
	"ralt":   61,
	"cmd":    55,
	"rcmd":   54,
	"fn":     63,
	"f13":    105,
	"f14":    107,
	"f15":    113,
	"f16":    106,
	"f17":    64,
	"f18":    79,
	"f19":    80,
	"f20":    90,
}
