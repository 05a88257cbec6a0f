package models

type TokenResponse struct {
	Token  string            `json:"token"`
	Params map[string]string `json:"params"`
	Query  SearchQuery       `json:"query"`
}

type DecodeMetadata struct {
	TotalResults int   `json:"total_results"`
	Best         int   `json:"best"`
	Other        int   `json:"other"`
	Dropped      int   `json:"dropped"`
	DecodeTimeMs int64 `json:"decode_time_ms"`
}

type DecodeResultResponse struct {
	Metadata DecodeMetadata `json:"metadata"`
	Best     []Itinerary    `json:"best"`
	Other    []Itinerary    `json:"other"`
	Drops    []Drop         `json:"drops,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
