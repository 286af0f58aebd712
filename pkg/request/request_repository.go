package request

import (
	"context"
	"fmt"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/pkg/store"
)

type (
	RequestRepository interface {
		CreateRequest(ctx context.Context, req domain.FoodRequest) error
		GetRequests(ctx context.Context) []domain.FoodRequest
		GetRequestByID(ctx context.Context, id string) (domain.FoodRequest, error)
		FindActiveRequest(ctx context.Context, recipientID, donationID string) (domain.FoodRequest, bool)
		UpdateRequest(ctx context.Context, id string, update func(domain.FoodRequest) (domain.FoodRequest, error)) (domain.FoodRequest, error)
	}

	requestRepository struct {
		requests *store.Collection[domain.FoodRequest]
	}
)

func NewRequestRepository(recordStore store.RecordStore) RequestRepository {
	return &requestRepository{
		requests: store.NewCollection[domain.FoodRequest](recordStore, store.CollectionFoodRequests),
	}
}

func (r *requestRepository) CreateRequest(ctx context.Context, req domain.FoodRequest) error {
	return r.requests.Append(ctx, req)
}

func (r *requestRepository) GetRequests(ctx context.Context) []domain.FoodRequest {
	return r.requests.Load(ctx)
}

func (r *requestRepository) GetRequestByID(ctx context.Context, id string) (domain.FoodRequest, error) {
	req, ok := r.requests.Find(ctx, func(fr domain.FoodRequest) bool { return fr.ID == id })
	if !ok {
		return domain.FoodRequest{}, fmt.Errorf("food request %s: %w", id, domain.ErrNotFound)
	}
	return req, nil
}

func (r *requestRepository) FindActiveRequest(ctx context.Context, recipientID, donationID string) (domain.FoodRequest, bool) {
	return r.requests.Find(ctx, func(fr domain.FoodRequest) bool {
		return fr.RecipientID == recipientID && fr.DonationID == donationID && fr.Status.Active()
	})
}

func (r *requestRepository) UpdateRequest(
	ctx context.Context,
	id string,
	update func(domain.FoodRequest) (domain.FoodRequest, error),
) (domain.FoodRequest, error) {
	return r.requests.Replace(ctx, func(fr domain.FoodRequest) bool { return fr.ID == id }, update)
}
