package donation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/metrics"
	"Food-Rescue-Ledger/internal/utils/storage"
	"Food-Rescue-Ledger/internal/utils/txn"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const earthRadiusKm = 6371.0

type (
	DonationService interface {
		CreateDonation(ctx context.Context, req domain.CreateDonationRequest, donorID string) (*domain.DonationListing, error)
		ValidateDonation(req domain.CreateDonationRequest) error
		ListActiveDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.DonationListing, error)
		GetDonationByID(ctx context.Context, id string) (*domain.DonationListing, error)
		GetDonorDonations(ctx context.Context, donorID string) ([]domain.DonationListing, error)
		UploadDonationPhoto(ctx context.Context, req domain.UploadDonationPhotoRequest, donorID string) (*domain.DonationListing, error)
		SweepExpiredDonations(ctx context.Context) (int, error)
	}

	donationService struct {
		donationRepository DonationRepository
		s3                 storage.AwsS3
		serial             *txn.Serial
		now                func() time.Time
	}
)

func NewDonationService(donationRepository DonationRepository, s3 storage.AwsS3, serial *txn.Serial, now func() time.Time) DonationService {
	if now == nil {
		now = time.Now
	}
	return &donationService{
		donationRepository: donationRepository,
		s3:                 s3,
		serial:             serial,
		now:                now,
	}
}

// validateOrdered checks quantity, expiry and pickup window, in that order.
// These run before any other field check.
func validateOrdered(req domain.CreateDonationRequest, now time.Time) error {
	if !(req.Quantity > 0) {
		return domain.NewValidationError("quantity", "must be positive")
	}
	if !req.ExpiryAt.After(now) {
		return domain.NewValidationError("expiry_at", "must be in the future")
	}
	if !req.PickupWindow.Start.Before(req.PickupWindow.End) {
		return domain.NewValidationError("pickup_window", "start must be before end")
	}
	return nil
}

// validateCreate reports the first bad field.
func validateCreate(req domain.CreateDonationRequest, now time.Time) error {
	if err := validateOrdered(req, now); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	if !req.Category.Valid() {
		return domain.NewValidationError("category", "unknown category")
	}
	if !req.Unit.Valid() {
		return domain.NewValidationError("unit", "unknown unit")
	}
	if !req.Storage.Valid() {
		return domain.NewValidationError("storage", "unknown storage condition")
	}
	return nil
}

// ValidateDonation runs the ordered quantity, expiry and pickup window checks
// against the service clock.
func (s *donationService) ValidateDonation(req domain.CreateDonationRequest) error {
	return validateOrdered(req, s.now())
}

func (s *donationService) CreateDonation(ctx context.Context, req domain.CreateDonationRequest, donorID string) (*domain.DonationListing, error) {
	var created domain.DonationListing

	err := s.serial.Do(func() error {
		now := s.now()
		if err := validateCreate(req, now); err != nil {
			return err
		}

		created = domain.DonationListing{
			ID:               uuid.New().String(),
			DonorID:          donorID,
			Title:            strings.TrimSpace(req.Title),
			Description:      req.Description,
			Category:         req.Category,
			Quantity:         req.Quantity,
			Unit:             req.Unit,
			ExpiryAt:         req.ExpiryAt,
			Storage:          req.Storage,
			StorageTempC:     req.StorageTempC,
			QualityCertified: req.QualityCertified,
			PickupAddress:    req.PickupAddress,
			PickupLocation:   req.PickupLocation,
			PickupWindow:     req.PickupWindow,
			Notes:            req.Notes,
			Status:           domain.DonationListed,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return s.donationRepository.CreateDonation(ctx, created)
	})
	metrics.Observe("donation.create", err)
	if err != nil {
		return nil, err
	}

	log.Infow("donation listed", "donation_id", created.ID, "donor_id", donorID, "category", created.Category)
	return &created, nil
}

func (s *donationService) ListActiveDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.DonationListing, error) {
	var result []domain.DonationListing

	err := s.serial.Do(func() error {
		now := s.now()
		donations := s.donationRepository.GetDonations(ctx)

		result = make([]domain.DonationListing, 0, len(donations))
		for _, d := range donations {
			d.Status = EffectiveStatus(d, now)
			if !d.Status.Active() {
				continue
			}
			if !matchesFilter(d, filter, now) {
				continue
			}
			result = append(result, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ExpiryAt.Equal(result[j].ExpiryAt) {
			return result[i].ExpiryAt.Before(result[j].ExpiryAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func matchesFilter(d domain.DonationListing, filter domain.DonationFilter, now time.Time) bool {
	if filter.Category != "" && d.Category != filter.Category {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		if !strings.Contains(strings.ToLower(d.Title), q) && !strings.Contains(strings.ToLower(d.Description), q) {
			return false
		}
	}

	if filter.ExpiringWithin > 0 && d.ExpiryAt.After(now.Add(filter.ExpiringWithin)) {
		return false
	}

	// Listings without a known location are never excluded by distance.
	if filter.MaxDistanceKm > 0 && filter.Origin != nil && d.PickupLocation != nil {
		if DistanceKm(*filter.Origin, *d.PickupLocation) > filter.MaxDistanceKm {
			return false
		}
	}
	return true
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b domain.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func (s *donationService) GetDonationByID(ctx context.Context, id string) (*domain.DonationListing, error) {
	var found domain.DonationListing

	err := s.serial.Do(func() error {
		d, err := s.donationRepository.GetDonationByID(ctx, id)
		if err != nil {
			return err
		}
		d.Status = EffectiveStatus(d, s.now())
		found = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (s *donationService) GetDonorDonations(ctx context.Context, donorID string) ([]domain.DonationListing, error) {
	var result []domain.DonationListing

	err := s.serial.Do(func() error {
		now := s.now()
		for _, d := range s.donationRepository.GetDonations(ctx) {
			if d.DonorID != donorID {
				continue
			}
			d.Status = EffectiveStatus(d, now)
			result = append(result, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if result == nil {
		result = []domain.DonationListing{}
	}
	return result, nil
}

func (s *donationService) checkPhotoTarget(ctx context.Context, id, donorID string) error {
	d, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return err
	}
	if d.DonorID != donorID {
		return domain.ErrUnauthorizedDonationAccess
	}
	if EffectiveStatus(d, s.now()).Terminal() {
		return fmt.Errorf("donation %s: %w", id, domain.ErrInvalidTransition)
	}
	return nil
}

// UploadDonationPhoto uploads outside the ledger lock and re-checks the
// listing before recording the URL.
func (s *donationService) UploadDonationPhoto(ctx context.Context, req domain.UploadDonationPhotoRequest, donorID string) (*domain.DonationListing, error) {
	if req.Photo == nil {
		return nil, domain.ErrPhotoRequired
	}

	if err := s.serial.Do(func() error { return s.checkPhotoTarget(ctx, req.DonationID, donorID) }); err != nil {
		return nil, err
	}

	objectKey, err := s.s3.UploadFile(ctx, fmt.Sprintf("donation-%s", req.DonationID), req.Photo, "donations", storage.AllowImage...)
	if err != nil {
		return nil, err
	}
	photoURL := s.s3.GetPublicLinkKey(objectKey)

	var updated domain.DonationListing
	err = s.serial.Do(func() error {
		if err := s.checkPhotoTarget(ctx, req.DonationID, donorID); err != nil {
			return err
		}
		d, err := s.donationRepository.UpdateDonation(ctx, req.DonationID, func(d domain.DonationListing) (domain.DonationListing, error) {
			d.PhotoURL = photoURL
			d.UpdatedAt = s.now()
			return d, nil
		})
		updated = d
		return err
	})
	metrics.Observe("donation.photo", err)
	if err != nil {
		return nil, err
	}
	updated.Status = EffectiveStatus(updated, s.now())
	return &updated, nil
}

// SweepExpiredDonations persists the expired status that reads already
// report. It returns how many listings were rewritten.
func (s *donationService) SweepExpiredDonations(ctx context.Context) (int, error) {
	swept := 0

	err := s.serial.Do(func() error {
		now := s.now()
		for _, d := range s.donationRepository.GetDonations(ctx) {
			if !d.Status.Active() || EffectiveStatus(d, now) != domain.DonationExpired {
				continue
			}
			if _, err := s.donationRepository.TransitionStatus(ctx, d.ID, domain.DonationExpired, now); err != nil {
				if errors.Is(err, domain.ErrStorageFull) {
					return err
				}
				log.Warnw("could not expire donation", "donation_id", d.ID, "error", err)
				continue
			}
			swept++
		}
		return nil
	})
	metrics.Observe("donation.sweep", err)
	if swept > 0 {
		log.Infow("expired donations swept", "count", swept)
	}
	return swept, err
}
