package fiber

type CoverageResponse struct {
	MetricName      string   `json:"metric_name"`
	CountWithMetric int64    `json:"count_with_metric"`
	NAccount        int64    `json:"n_account"`
	PctWithMetric   float64  `json:"pct_with_metric"`
	AvgValue        *float64 `json:"avg_value"`
	MinValue        *float64 `json:"min_value"`
	MaxValue        *float64 `json:"max_value"`
	EarliestMetric  *string  `json:"earliest_metric"`
	LastMetric      *string  `json:"last_metric"`
}

type SeriesPointResponse struct {
	MetricTime string   `json:"metric_time" example:"2021-01-29"`
	NCalc      int64    `json:"n_calc"`
	Avg        *float64 `json:"avg"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
}

type SeriesResponse struct {
	MetricName string                `json:"metric_name"`
	Points     []SeriesPointResponse `json:"points"`
	Gaps       []string              `json:"gaps"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"start date: invalid date"`
}
