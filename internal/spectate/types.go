package spectate

import "git.lost.host/meutraa/cadence/internal/score"

// FlashMessage is sent for every judgement
type FlashMessage struct {
	Type      string `json:"type"` // "flash"
	Column    int    `json:"column"`
	Judgement string `json:"judgement"`
	Tag       string `json:"tag"`
	Score     int    `json:"score"`
}

// StatusMessage carries the running totals after a judgement
type StatusMessage struct {
	Type     string         `json:"type"` // "status"
	Status   score.Snapshot `json:"status"`
	Accuracy float64        `json:"accuracy"`
	Rank     string         `json:"rank"`
}
