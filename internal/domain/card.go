package domain

// Card is an entry of the externally owned catalog.
type Card struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	ImgURL string `json:"img_url"`
}

// Favorite is a remote per-card marker, independent of deck membership.
// ID is opaque: the favorites service may issue numeric or string ids.
type Favorite struct {
	ID     string `json:"id"`
	CardID int    `json:"card_id"`
}
