package keys

// X11 keysyms as reported by the event hook on Linux. There is no
// observable fn key here; laptop firmware swallows it.
var rawcodes = map[string]uint16{
	"ctrl":   65507,
	"rctrl":  65508,
	"shift":  65505,
	"rshift": 65506,
	"alt":    65513,
	"ralt":   65514,
	"cmd":    65515,
	"rcmd":   65516,
	"f13":    65482,
	"f14":    65483,
	"f15":    65484,
	"f16":    65485,
	"f17":    65486,
	"f18":    65487,
	"f19":    65488,
	"f20":    65489,
}
