package score

type Rank struct {
	Name     string
	Accuracy float64 // Lowest accuracy that earns the rank
}

// Ranks are ordered best first, the final entry catches everything.
var Ranks = []Rank{
	{Name: "SS", Accuracy: 0.999},
	{Name: "S", Accuracy: 0.98},
	{Name: "A", Accuracy: 0.95},
	{Name: "B", Accuracy: 0.90},
	{Name: "C", Accuracy: 0.80},
	{Name: "D", Accuracy: 0.70},
	{Name: "E", Accuracy: 0.50},
	{Name: "F", Accuracy: 0},
}

func RankFor(accuracy float64) Rank {
	for _, r := range Ranks {
		if accuracy >= r.Accuracy {
			return r
		}
	}
	return Ranks[len(Ranks)-1]
}

func (s Snapshot) Rank() Rank {
	return RankFor(s.Accuracy())
}
