package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils/txn"
	"Food-Rescue-Ledger/pkg/donation"
)

const (
	mealsPerKg  = 2.5
	co2PerKg    = 2.5 // kg CO2 avoided per kg of food
	kgPerLiter  = 1.0
	mealsPerUse = 1.0 // items and meals count as one meal each
)

type (
	AnalyticsService interface {
		GetDonorStatistics(ctx context.Context, donorID string) (*domain.DonorStatistics, error)
		GetCategorySeries(ctx context.Context) ([]domain.SeriesPoint, error)
		GetHeatPoints(ctx context.Context) ([]domain.HeatPoint, error)
	}

	analyticsService struct {
		donationRepository donation.DonationRepository
		serial             *txn.Serial
		now                func() time.Time
	}
)

func NewAnalyticsService(donationRepository donation.DonationRepository, serial *txn.Serial, now func() time.Time) AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &analyticsService{
		donationRepository: donationRepository,
		serial:             serial,
		now:                now,
	}
}

// GetDonorStatistics counts the donor's listings by status. Rescued food is
// what left the listed state: allocated or picked up.
func (s *analyticsService) GetDonorStatistics(ctx context.Context, donorID string) (*domain.DonorStatistics, error) {
	stats := &domain.DonorStatistics{}

	err := s.serial.Do(func() error {
		now := s.now()
		meals := 0.0

		for _, d := range s.donationRepository.GetDonations(ctx) {
			if d.DonorID != donorID {
				continue
			}
			stats.TotalDonations++

			switch donation.EffectiveStatus(d, now) {
			case domain.DonationListed, domain.DonationRequested:
				stats.ListedDonations++
				continue
			case domain.DonationExpired:
				stats.ExpiredDonations++
				continue
			case domain.DonationAllocated:
				stats.AllocatedDonations++
			case domain.DonationPickedUp:
				stats.PickedUpDonations++
			}

			kg, m := impactOf(d)
			stats.FoodRescuedKg += kg
			meals += m
		}

		stats.EstimatedCO2Reduced = stats.FoodRescuedKg * co2PerKg
		stats.EstimatedMeals = int(math.Round(meals))
		stats.EstimatedImpact = fmt.Sprintf("You've helped provide approximately %d meals to those in need.", stats.EstimatedMeals)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// impactOf converts a listing's quantity into kilograms of food and meals.
func impactOf(d domain.DonationListing) (kg, meals float64) {
	switch d.Unit {
	case domain.UnitKg:
		return d.Quantity, d.Quantity * mealsPerKg
	case domain.UnitLiters:
		kg = d.Quantity * kgPerLiter
		return kg, kg * mealsPerKg
	case domain.UnitItems, domain.UnitMeals:
		return 0, d.Quantity * mealsPerUse
	}
	return 0, 0
}

// GetCategorySeries sums listed quantity per category across every listing,
// in the fixed category order. Categories with nothing listed report zero.
func (s *analyticsService) GetCategorySeries(ctx context.Context) ([]domain.SeriesPoint, error) {
	totals := make(map[domain.DonationCategory]float64, len(domain.Categories))

	err := s.serial.Do(func() error {
		for _, d := range s.donationRepository.GetDonations(ctx) {
			totals[d.Category] += d.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	series := make([]domain.SeriesPoint, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		series = append(series, domain.SeriesPoint{Label: string(c), Value: totals[c]})
	}
	return series, nil
}

// GetHeatPoints returns one point per active listing with a pickup location,
// weighted by quantity relative to the largest one.
func (s *analyticsService) GetHeatPoints(ctx context.Context) ([]domain.HeatPoint, error) {
	points := []domain.HeatPoint{}

	err := s.serial.Do(func() error {
		now := s.now()
		maxQuantity := 0.0
		active := []domain.DonationListing{}

		for _, d := range s.donationRepository.GetDonations(ctx) {
			if d.PickupLocation == nil || !donation.EffectiveStatus(d, now).Active() {
				continue
			}
			active = append(active, d)
			maxQuantity = math.Max(maxQuantity, d.Quantity)
		}
		if maxQuantity <= 0 {
			return nil
		}

		for _, d := range active {
			points = append(points, domain.HeatPoint{
				Lat:    d.PickupLocation.Latitude,
				Lng:    d.PickupLocation.Longitude,
				Weight: d.Quantity / maxQuantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}
