package models

// DogInfo is the normalized breed record returned by GET /chat/info.
type DogInfo struct {
	Found        bool   `json:"found"`
	Breed        string `json:"breed,omitempty"`
	Temperament  string `json:"temperament,omitempty"`
	LifeSpan     string `json:"life_span,omitempty"`
	HeightMetric string `json:"height_metric,omitempty"`
	WeightMetric string `json:"weight_metric,omitempty"`
	BredFor      string `json:"bred_for,omitempty"`
	BreedGroup   string `json:"breed_group,omitempty"`
	Origin       string `json:"origin,omitempty"`
	Message      string `json:"message,omitempty"`
}
