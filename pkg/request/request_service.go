package request

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/metrics"
	"Food-Rescue-Ledger/internal/utils/txn"
	"Food-Rescue-Ledger/pkg/donation"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type (
	RequestService interface {
		SubmitRequest(ctx context.Context, req domain.SubmitRequestRequest, recipientID string) (*domain.FoodRequest, error)
		ConfirmRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error)
		CancelRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error)
		FulfilRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error)
		GetRequestByID(ctx context.Context, requestID string) (*domain.FoodRequest, error)
		GetRecipientRequests(ctx context.Context, recipientID string) ([]domain.FoodRequest, error)
		GetDonationRequests(ctx context.Context, donationID string) ([]domain.FoodRequest, error)
	}

	requestService struct {
		requestRepository  RequestRepository
		donationRepository donation.DonationRepository
		serial             *txn.Serial
		now                func() time.Time
	}
)

func NewRequestService(requestRepository RequestRepository, donationRepository donation.DonationRepository, serial *txn.Serial, now func() time.Time) RequestService {
	if now == nil {
		now = time.Now
	}
	return &requestService{
		requestRepository:  requestRepository,
		donationRepository: donationRepository,
		serial:             serial,
		now:                now,
	}
}

func (s *requestService) SubmitRequest(ctx context.Context, req domain.SubmitRequestRequest, recipientID string) (*domain.FoodRequest, error) {
	var created domain.FoodRequest

	err := s.serial.Do(func() error {
		now := s.now()

		d, err := s.donationRepository.GetDonationByID(ctx, req.DonationID)
		if err != nil {
			return err
		}
		if status := donation.EffectiveStatus(d, now); status != domain.DonationListed {
			return fmt.Errorf("donation %s is %s: %w", d.ID, status, domain.ErrNotFound)
		}

		if existing, ok := s.requestRepository.FindActiveRequest(ctx, recipientID, req.DonationID); ok {
			return fmt.Errorf("request %s is %s: %w", existing.ID, existing.Status, domain.ErrDuplicateRequest)
		}

		created = domain.FoodRequest{
			ID:          uuid.New().String(),
			DonationID:  req.DonationID,
			RecipientID: recipientID,
			Status:      domain.RequestPending,
			Note:        req.Note,
			RequestedAt: now,
			UpdatedAt:   now,
		}
		return s.requestRepository.CreateRequest(ctx, created)
	})
	metrics.Observe("request.submit", err)
	if err != nil {
		return nil, err
	}

	log.Infow("food request submitted", "request_id", created.ID, "donation_id", created.DonationID, "recipient_id", recipientID)
	return &created, nil
}

// setRequestStatus is the request half of every coupled update.
func (s *requestService) setRequestStatus(ctx context.Context, snapshot domain.FoodRequest, to domain.RequestStatus, now time.Time, out *domain.FoodRequest) txn.Step {
	return txn.Step{
		Name: "request " + string(to),
		Check: func() error {
			if !snapshot.Status.CanTransition(to) {
				return fmt.Errorf("request %s %s -> %s: %w", snapshot.ID, snapshot.Status, to, domain.ErrInvalidTransition)
			}
			return nil
		},
		Apply: func() error {
			updated, err := s.requestRepository.UpdateRequest(ctx, snapshot.ID, func(fr domain.FoodRequest) (domain.FoodRequest, error) {
				if fr.Status != snapshot.Status {
					return fr, fmt.Errorf("request %s changed to %s: %w", fr.ID, fr.Status, domain.ErrInvalidTransition)
				}
				fr.Status = to
				fr.UpdatedAt = now
				return fr, nil
			})
			if err == nil {
				*out = updated
			}
			return err
		},
		Undo: func() error {
			_, err := s.requestRepository.UpdateRequest(ctx, snapshot.ID, func(domain.FoodRequest) (domain.FoodRequest, error) {
				return snapshot, nil
			})
			return err
		},
	}
}

func (s *requestService) setDonationStatus(ctx context.Context, snapshot domain.DonationListing, to domain.DonationStatus, now time.Time, check func() error) txn.Step {
	return txn.Step{
		Name:  "donation " + string(to),
		Check: check,
		Apply: func() error {
			_, err := s.donationRepository.TransitionStatus(ctx, snapshot.ID, to, now)
			return err
		},
		Undo: func() error {
			return s.donationRepository.RestoreDonation(ctx, snapshot)
		},
	}
}

// ConfirmRequest allocates the donation to the request. Both records change
// or neither does.
func (s *requestService) ConfirmRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error) {
	var confirmed domain.FoodRequest

	err := s.serial.Do(func() error {
		now := s.now()

		fr, err := s.requestRepository.GetRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		if fr.Status != domain.RequestPending {
			return fmt.Errorf("request %s is %s: %w", fr.ID, fr.Status, domain.ErrNotFound)
		}

		d, err := s.donationRepository.GetDonationByID(ctx, fr.DonationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("donation %s missing: %w", fr.DonationID, domain.ErrStaleDonation)
			}
			return err
		}

		return txn.Commit(
			s.setRequestStatus(ctx, fr, domain.RequestConfirmed, now, &confirmed),
			s.setDonationStatus(ctx, d, domain.DonationAllocated, now, func() error {
				if status := donation.EffectiveStatus(d, now); status != domain.DonationListed {
					return fmt.Errorf("donation %s is %s: %w", d.ID, status, domain.ErrStaleDonation)
				}
				return nil
			}),
		)
	})
	metrics.Observe("request.confirm", err)
	if err != nil {
		return nil, err
	}

	log.Infow("food request confirmed", "request_id", confirmed.ID, "donation_id", confirmed.DonationID)
	return &confirmed, nil
}

// CancelRequest cancels a pending or confirmed request. Cancelling a
// confirmed request hands the donation back to the listed pool.
func (s *requestService) CancelRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error) {
	var cancelled domain.FoodRequest

	err := s.serial.Do(func() error {
		now := s.now()

		fr, err := s.requestRepository.GetRequestByID(ctx, requestID)
		if err != nil {
			return err
		}

		steps := []txn.Step{s.setRequestStatus(ctx, fr, domain.RequestCancelled, now, &cancelled)}

		if fr.Status == domain.RequestConfirmed {
			d, err := s.donationRepository.GetDonationByID(ctx, fr.DonationID)
			switch {
			case err == nil && d.Status == domain.DonationAllocated:
				steps = append(steps, s.setDonationStatus(ctx, d, domain.DonationListed, now, nil))
			case err == nil || errors.Is(err, domain.ErrNotFound):
				log.Warnw("confirmed request without allocated donation", "request_id", fr.ID, "donation_id", fr.DonationID)
			default:
				return err
			}
		}

		return txn.Commit(steps...)
	})
	metrics.Observe("request.cancel", err)
	if err != nil {
		return nil, err
	}

	log.Infow("food request cancelled", "request_id", cancelled.ID, "donation_id", cancelled.DonationID)
	return &cancelled, nil
}

// FulfilRequest records the pickup of an allocated donation.
func (s *requestService) FulfilRequest(ctx context.Context, requestID string) (*domain.FoodRequest, error) {
	var fulfilled domain.FoodRequest

	err := s.serial.Do(func() error {
		now := s.now()

		fr, err := s.requestRepository.GetRequestByID(ctx, requestID)
		if err != nil {
			return err
		}

		d, err := s.donationRepository.GetDonationByID(ctx, fr.DonationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("donation %s missing: %w", fr.DonationID, domain.ErrStaleDonation)
			}
			return err
		}

		return txn.Commit(
			s.setRequestStatus(ctx, fr, domain.RequestFulfilled, now, &fulfilled),
			s.setDonationStatus(ctx, d, domain.DonationPickedUp, now, func() error {
				if d.Status != domain.DonationAllocated {
					return fmt.Errorf("donation %s is %s: %w", d.ID, d.Status, domain.ErrStaleDonation)
				}
				return nil
			}),
		)
	})
	metrics.Observe("request.fulfil", err)
	if err != nil {
		return nil, err
	}

	log.Infow("food request fulfilled", "request_id", fulfilled.ID, "donation_id", fulfilled.DonationID)
	return &fulfilled, nil
}

func (s *requestService) GetRequestByID(ctx context.Context, requestID string) (*domain.FoodRequest, error) {
	var found domain.FoodRequest
	err := s.serial.Do(func() error {
		fr, err := s.requestRepository.GetRequestByID(ctx, requestID)
		found = fr
		return err
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (s *requestService) GetRecipientRequests(ctx context.Context, recipientID string) ([]domain.FoodRequest, error) {
	result, err := s.filter(ctx, func(fr domain.FoodRequest) bool { return fr.RecipientID == recipientID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RequestedAt.After(result[j].RequestedAt)
	})
	return result, nil
}

// GetDonationRequests returns the queue for one donation, oldest first.
func (s *requestService) GetDonationRequests(ctx context.Context, donationID string) ([]domain.FoodRequest, error) {
	result, err := s.filter(ctx, func(fr domain.FoodRequest) bool { return fr.DonationID == donationID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})
	return result, nil
}

func (s *requestService) filter(ctx context.Context, keep func(domain.FoodRequest) bool) ([]domain.FoodRequest, error) {
	result := []domain.FoodRequest{}
	err := s.serial.Do(func() error {
		for _, fr := range s.requestRepository.GetRequests(ctx) {
			if keep(fr) {
				result = append(result, fr)
			}
		}
		return nil
	})
	return result, err
}
