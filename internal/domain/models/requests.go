package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type FlipsRequest struct {
	Items     string  `query:"items" json:"items" validate:"required"`
	Cities    string  `query:"cities" json:"cities"`
	Qualities string  `query:"qualities" json:"qualities" default:"1"`
	MinROI    float64 `query:"min_roi" json:"min_roi" default:"5" validate:"gte=0,lte=1000"`
	Max       int     `query:"max" json:"max" default:"50" validate:"gte=1,lte=500"`
}

type PricesRequest struct {
	Items     string `query:"items" json:"items" validate:"required"`
	Cities    string `query:"cities" json:"cities"`
	Qualities string `query:"qualities" json:"qualities" default:"1"`
	Region    string `query:"region" json:"region" default:"west"`
}

type GoldRequest struct {
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=720"`
}

type BuildsRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
