package domain

var (
	MessageSuccessGetDonorStatistics = "donor statistics retrieved successfully"
	MessageSuccessGetCategorySeries  = "category series retrieved successfully"
	MessageSuccessGetHeatPoints      = "heat map points retrieved successfully"

	MessageFailedGetDonorStatistics = "failed to retrieve donor statistics"
	MessageFailedGetCategorySeries  = "failed to retrieve category series"
	MessageFailedGetHeatPoints      = "failed to retrieve heat map points"
)

type (
	DonorStatistics struct {
		TotalDonations      int     `json:"total_donations"`
		ListedDonations     int     `json:"listed_donations"`
		AllocatedDonations  int     `json:"allocated_donations"`
		PickedUpDonations   int     `json:"picked_up_donations"`
		ExpiredDonations    int     `json:"expired_donations"`
		FoodRescuedKg       float64 `json:"food_rescued_kg"`
		EstimatedCO2Reduced float64 `json:"estimated_co2_reduced"` // in kg
		EstimatedMeals      int     `json:"estimated_meals"`
		EstimatedImpact     string  `json:"estimated_impact"`
	}

	// SeriesPoint is the shape the chart collaborator consumes.
	SeriesPoint struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// HeatPoint is the shape the map collaborator consumes.
	HeatPoint struct {
		Lat    float64 `json:"lat"`
		Lng    float64 `json:"lng"`
		Weight float64 `json:"weight"`
	}
)
