package keys

// Virtual-key codes as reported by the event hook on Windows.
var rawcodes = map[string]uint16{
	"ctrl":   162,
	"rctrl":  163,
	"shift":  160,
	"rshift": 161,
	"alt":    164,
	"ralt":   165,
	"cmd":    91,
	"rcmd":   92,
	"f13":    124,
	"f14":    125,
	"f15":    126,
	"f16":    127,
	"f17":    128,
	"f18":    129,
	"f19":    130,
	"f20":    131,
}
