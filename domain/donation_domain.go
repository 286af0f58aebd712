package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateDonation = "donation created successfully"
	MessageSuccessGetDonations   = "donations retrieved successfully"
	MessageSuccessGetDonation    = "donation retrieved successfully"
	MessageSuccessUploadPhoto    = "donation photo uploaded successfully"
	MessageSuccessSweepDonations = "expired donations swept successfully"

	MessageFailedCreateDonation = "failed to create donation"
	MessageFailedGetDonations   = "failed to retrieve donations"
	MessageFailedGetDonation    = "failed to retrieve donation"
	MessageFailedUploadPhoto    = "failed to upload donation photo"
	MessageFailedSweepDonations = "failed to sweep expired donations"

	ErrUnauthorizedDonationAccess = errors.New("unauthorized access to donation")
	ErrInvalidCoordinates         = errors.New("invalid coordinates")
	ErrPhotoRequired              = errors.New("photo is required")
)

type DonationCategory string

const (
	CategoryPrepared DonationCategory = "prepared"
	CategoryFresh    DonationCategory = "fresh"
	CategoryPackaged DonationCategory = "packaged"
	CategoryBakery   DonationCategory = "bakery"
	CategoryDairy    DonationCategory = "dairy"
	CategoryFrozen   DonationCategory = "frozen"
	CategoryOther    DonationCategory = "other"
)

// Categories is the fixed display order used by listings and charts.
var Categories = []DonationCategory{
	CategoryPrepared,
	CategoryFresh,
	CategoryPackaged,
	CategoryBakery,
	CategoryDairy,
	CategoryFrozen,
	CategoryOther,
}

func (c DonationCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type QuantityUnit string

const (
	UnitKg     QuantityUnit = "kg"
	UnitItems  QuantityUnit = "items"
	UnitMeals  QuantityUnit = "meals"
	UnitLiters QuantityUnit = "liters"
)

func (u QuantityUnit) Valid() bool {
	switch u {
	case UnitKg, UnitItems, UnitMeals, UnitLiters:
		return true
	}
	return false
}

type StorageCondition string

const (
	StorageRoomTemperature StorageCondition = "room-temperature"
	StorageRefrigerated    StorageCondition = "refrigerated"
	StorageFrozen          StorageCondition = "frozen"
	StorageImmediatePickup StorageCondition = "immediate-pickup"
)

func (s StorageCondition) Valid() bool {
	switch s {
	case StorageRoomTemperature, StorageRefrigerated, StorageFrozen, StorageImmediatePickup:
		return true
	}
	return false
}

type DonationStatus string

const (
	DonationListed    DonationStatus = "listed"
	DonationRequested DonationStatus = "requested"
	DonationAllocated DonationStatus = "allocated"
	DonationPickedUp  DonationStatus = "picked-up"
	DonationExpired   DonationStatus = "expired"
)

// rank orders the forward path. Expired sits beside it rather than on it.
func (s DonationStatus) rank() int {
	switch s {
	case DonationListed:
		return 0
	case DonationRequested:
		return 1
	case DonationAllocated:
		return 2
	case DonationPickedUp:
		return 3
	}
	return -1
}

func (s DonationStatus) Terminal() bool {
	return s == DonationPickedUp || s == DonationExpired
}

// Active reports whether the listing can still expire or be requested.
func (s DonationStatus) Active() bool {
	return s == DonationListed || s == DonationRequested
}

// CanAdvance reports whether to is a forward move from s.
func (s DonationStatus) CanAdvance(to DonationStatus) bool {
	if s.Terminal() {
		return false
	}
	if to == DonationExpired {
		return s.Active()
	}
	return to.rank() > s.rank() && to.rank() >= 0
}

// CanRevert covers the single backward edge, used when a confirmed request is cancelled.
func (s DonationStatus) CanRevert(to DonationStatus) bool {
	return s == DonationAllocated && to == DonationListed
}

type (
	GeoPoint struct {
		Latitude  float64 `json:"lat" validate:"min=-90,max=90"`
		Longitude float64 `json:"lng" validate:"min=-180,max=180"`
	}

	TimeWindow struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}

	DonationListing struct {
		ID               string           `json:"id"`
		DonorID          string           `json:"donor_id"`
		Title            string           `json:"title"`
		Description      string           `json:"description,omitempty"`
		Category         DonationCategory `json:"category"`
		Quantity         float64          `json:"quantity"`
		Unit             QuantityUnit     `json:"unit"`
		ExpiryAt         time.Time        `json:"expiry_at"`
		Storage          StorageCondition `json:"storage"`
		StorageTempC     *float64         `json:"storage_temp_c,omitempty"`
		QualityCertified bool             `json:"quality_certified"`
		PickupAddress    string           `json:"pickup_address"`
		PickupLocation   *GeoPoint        `json:"pickup_location,omitempty"`
		PickupWindow     TimeWindow       `json:"pickup_window"`
		Notes            string           `json:"notes,omitempty"`
		PhotoURL         string           `json:"photo_url,omitempty"`
		Status           DonationStatus   `json:"status"`
		CreatedAt        time.Time        `json:"created_at"`
		UpdatedAt        time.Time        `json:"updated_at"`
	}

	CreateDonationRequest struct {
		Title            string           `json:"title" validate:"required,max=120"`
		Description      string           `json:"description" validate:"omitempty,max=1000"`
		Category         DonationCategory `json:"category" validate:"required,oneof=prepared fresh packaged bakery dairy frozen other"`
		Quantity         float64          `json:"quantity"`
		Unit             QuantityUnit     `json:"unit" validate:"required,oneof=kg items meals liters"`
		ExpiryAt         time.Time        `json:"expiry_at"`
		Storage          StorageCondition `json:"storage" validate:"required,oneof=room-temperature refrigerated frozen immediate-pickup"`
		StorageTempC     *float64         `json:"storage_temp_c" validate:"omitempty,min=-40,max=80"`
		QualityCertified bool             `json:"quality_certified"`
		PickupAddress    string           `json:"pickup_address" validate:"required"`
		PickupLocation   *GeoPoint        `json:"pickup_location" validate:"omitempty"`
		PickupWindow     TimeWindow       `json:"pickup_window"`
		Notes            string           `json:"notes" validate:"omitempty,max=1000"`
	}

	// DonationFilter narrows ListActive. Zero values mean "no constraint".
	DonationFilter struct {
		Category       DonationCategory
		Search         string
		ExpiringWithin time.Duration
		Origin         *GeoPoint
		MaxDistanceKm  float64
	}

	UploadDonationPhotoRequest struct {
		DonationID string                `validate:"required,uuid"`
		Photo      *multipart.FileHeader `validate:"required"`
	}

	SweepResult struct {
		Expired int `json:"expired"`
	}
)
