package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/pkg/store"
)

type (
	// DonationRepository owns the donations collection. Callers serialise
	// access; the repository itself takes no locks.
	DonationRepository interface {
		CreateDonation(ctx context.Context, donation domain.DonationListing) error
		GetDonations(ctx context.Context) []domain.DonationListing
		GetDonationByID(ctx context.Context, id string) (domain.DonationListing, error)
		UpdateDonation(ctx context.Context, id string, update func(domain.DonationListing) (domain.DonationListing, error)) (domain.DonationListing, error)
		TransitionStatus(ctx context.Context, id string, to domain.DonationStatus, now time.Time) (domain.DonationListing, error)
		RestoreDonation(ctx context.Context, snapshot domain.DonationListing) error
	}

	donationRepository struct {
		donations *store.Collection[domain.DonationListing]
	}
)

func NewDonationRepository(recordStore store.RecordStore) DonationRepository {
	return &donationRepository{
		donations: store.NewCollection[domain.DonationListing](recordStore, store.CollectionDonations),
	}
}

// EffectiveStatus applies expiry: an active listing whose expiry has passed
// reads as expired whatever is stored.
func EffectiveStatus(d domain.DonationListing, now time.Time) domain.DonationStatus {
	if d.Status.Active() && !now.Before(d.ExpiryAt) {
		return domain.DonationExpired
	}
	return d.Status
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation domain.DonationListing) error {
	return r.donations.Append(ctx, donation)
}

func (r *donationRepository) GetDonations(ctx context.Context) []domain.DonationListing {
	return r.donations.Load(ctx)
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id string) (domain.DonationListing, error) {
	d, ok := r.donations.Find(ctx, byID(id))
	if !ok {
		return domain.DonationListing{}, fmt.Errorf("donation %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

func (r *donationRepository) UpdateDonation(
	ctx context.Context,
	id string,
	update func(domain.DonationListing) (domain.DonationListing, error),
) (domain.DonationListing, error) {
	return r.donations.Replace(ctx, byID(id), update)
}

// TransitionStatus moves a listing forward, or back from allocated to
// listed. Expiry is evaluated against now before the edge is checked, except
// when the move is the expiry itself.
func (r *donationRepository) TransitionStatus(
	ctx context.Context,
	id string,
	to domain.DonationStatus,
	now time.Time,
) (domain.DonationListing, error) {
	return r.donations.Replace(ctx, byID(id), func(d domain.DonationListing) (domain.DonationListing, error) {
		current := EffectiveStatus(d, now)
		if to == domain.DonationExpired {
			current = d.Status
		}
		if !current.CanAdvance(to) && !current.CanRevert(to) {
			return d, fmt.Errorf("donation %s %s -> %s: %w", d.ID, current, to, domain.ErrInvalidTransition)
		}
		d.Status = to
		d.UpdatedAt = now
		return d, nil
	})
}

// RestoreDonation writes snapshot back verbatim. It only undoes a step of a
// failed multi-record commit.
func (r *donationRepository) RestoreDonation(ctx context.Context, snapshot domain.DonationListing) error {
	_, err := r.donations.Replace(ctx, byID(snapshot.ID), func(domain.DonationListing) (domain.DonationListing, error) {
		return snapshot, nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("restore donation %s: %w", snapshot.ID, err)
	}
	return err
}

func byID(id string) func(domain.DonationListing) bool {
	return func(d domain.DonationListing) bool { return d.ID == id }
}
