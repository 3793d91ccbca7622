package game

type Difficulty struct {
	Name    string
	Msd     string
	Section string // Raw chart text, used to identify the chart
	NKeys   uint8
	Audio   string // Audio file named by the chart, if any
}

var NKeyMap = map[string]uint8{
	"dance-single": 4,
	"dance-solo":   6,
	"dance-double": 8,
}
