package fiber

// CreateEventRequest represents event creation payload
// @Description Event creation DTO
type CreateEventRequest struct {
	AccountID      string `json:"account_id" example:"A1"`
	EventTime      string `json:"event_time" example:"2020-05-01 10:00:00"`
	EventType      string `json:"event_type" example:"login"`
	ProductID      string `json:"product_id,omitempty"`
	AdditionalData string `json:"additional_data,omitempty"`
}

type CreateEventResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type BulkCreateEventsRequest struct {
	Events []CreateEventRequest `json:"events"`
}

type BulkCreateEventsResponse struct {
	Created    int64 `json:"created"`
	Duplicates int64 `json:"duplicates"`
	Batches    int   `json:"batches"`
}

type EventFrequencyResponse struct {
	EventType                string  `json:"event_type"`
	NEvent                   int64   `json:"n_event"`
	NAccount                 int64   `json:"n_account"`
	EventsPerAccount         float64 `json:"events_per_account"`
	NMonths                  float64 `json:"n_months"`
	EventsPerAccountPerMonth float64 `json:"events_per_account_per_month"`
}

type DailyCountResponse struct {
	EventDate string `json:"event_date" example:"2020-05-01"`
	NEvent    int64  `json:"n_event"`
}

type DailySummaryResponse struct {
	Days         int                  `json:"days"`
	DaysWithData int                  `json:"days_with_data"`
	ZeroDays     int                  `json:"zero_days"`
	Mean         float64              `json:"mean"`
	Median       float64              `json:"median"`
	Min          int64                `json:"min"`
	Max          int64                `json:"max"`
	Gaps         int                  `json:"gaps"`
	Outliers     []DailyCountResponse `json:"outliers"`
}

type EventsPerDayResponse struct {
	EventType string               `json:"event_type"`
	Days      []DailyCountResponse `json:"days"`
	Summary   DailySummaryResponse `json:"summary"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_event"`
	Message string `json:"message" example:"Event payload is invalid"`
}
