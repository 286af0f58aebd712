package domain

import "time"

var (
	MessageSuccessSubmitRequest  = "food request submitted successfully"
	MessageSuccessConfirmRequest = "food request confirmed successfully"
	MessageSuccessCancelRequest  = "food request cancelled successfully"
	MessageSuccessFulfilRequest  = "food request fulfilled successfully"
	MessageSuccessGetRequests    = "food requests retrieved successfully"

	MessageFailedSubmitRequest  = "failed to submit food request"
	MessageFailedConfirmRequest = "failed to confirm food request"
	MessageFailedCancelRequest  = "failed to cancel food request"
	MessageFailedFulfilRequest  = "failed to fulfil food request"
	MessageFailedGetRequests    = "failed to retrieve food requests"

	MessageAlreadyRequested = "you've already requested this donation"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestConfirmed RequestStatus = "confirmed"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

// Active requests count against the one-per-recipient-and-donation rule.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestConfirmed
}

func (s RequestStatus) CanTransition(to RequestStatus) bool {
	switch s {
	case RequestPending:
		return to == RequestConfirmed || to == RequestCancelled
	case RequestConfirmed:
		return to == RequestFulfilled || to == RequestCancelled
	}
	return false
}

type (
	FoodRequest struct {
		ID          string        `json:"id"`
		DonationID  string        `json:"donation_id"`
		RecipientID string        `json:"recipient_id"`
		Status      RequestStatus `json:"status"`
		Note        string        `json:"note,omitempty"`
		RequestedAt time.Time     `json:"requested_at"`
		UpdatedAt   time.Time     `json:"updated_at"`
	}

	SubmitRequestRequest struct {
		DonationID string `json:"donation_id" validate:"required,uuid"`
		Note       string `json:"note" validate:"omitempty,max=500"`
	}
)
