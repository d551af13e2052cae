package models

type SearchStats struct {
	SearchID              string   `json:"search_id"`
	TotalResults          int      `json:"total_results"`
	SearchTimeMs          int64    `json:"search_time_ms"`
	SegmentsCount         int      `json:"segments_count"`
	CombinationsTotal     int      `json:"combinations_total"`
	CombinationsSucceeded int      `json:"combinations_succeeded"`
	CombinationsFailed    int      `json:"combinations_failed"`
	CombinationsDropped   int      `json:"combinations_dropped"`
	BestPrice             *float64 `json:"best_price"`
	CacheHit              bool     `json:"cache_hit"`
}

type SearchResponse struct {
	Results     []CombinationResult `json:"results"`
	SearchStats SearchStats         `json:"search_stats"`
}

type ErrorResponse struct {
	Error       string `json:"error"`
	Detail      string `json:"detail"`
	Code        int    `json:"code"`
	CaptchaType string `json:"captcha_type,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
