package domain

// ItemScore is one entry of a ranked popularity or affinity list.
type ItemScore struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}
