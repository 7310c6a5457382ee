package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/api/responses"
	"github.com/sofiamendes/wanderstay-backend/api/validators"
	bookingsvc "github.com/sofiamendes/wanderstay-backend/internal/bookings"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
)

const bookingDateLayout = "2006-01-02"

type requestBookingRequest struct {
	ListingID       string  `json:"listing_id" validate:"required,uuid"`
	GuestName       string  `json:"guest_name" validate:"required,min=3,max=50"`
	GuestEmail      string  `json:"guest_email" validate:"required,email"`
	GuestPhone      string  `json:"guest_phone" validate:"required,len=10,numeric"`
	DateFrom        string  `json:"date_from" validate:"required"`
	DateTo          string  `json:"date_to" validate:"required"`
	Rooms           int     `json:"rooms" validate:"required,min=1"`
	People          int     `json:"people" validate:"required,min=1,max=20"`
	SpecialRequests *string `json:"special_requests,omitempty" validate:"omitempty,max=300"`
}

func parseBookingDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(bookingDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must use YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}

// RequestBooking creates a pending booking for the authenticated guest.
func RequestBooking(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := uuid.Parse(body.ListingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}
		dateFrom, err := parseBookingDate("date_from", body.DateFrom)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dateTo, err := parseBookingDate("date_to", body.DateTo)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Request(r.Context(), bookingsvc.RequestInput{
			ListingID:       listingID,
			UserID:          userID,
			GuestName:       body.GuestName,
			GuestEmail:      body.GuestEmail,
			GuestPhone:      body.GuestPhone,
			DateFrom:        dateFrom,
			DateTo:          dateTo,
			Rooms:           body.Rooms,
			People:          body.People,
			SpecialRequests: body.SpecialRequests,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, booking)
	}
}

// BookingDetail returns one booking visible to the requester.
func BookingDetail(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}

		booking, err := svc.GetForRequester(r.Context(), bookingID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

func bookingListParams(r *http.Request) (bookingsvc.ListParams, error) {
	params := bookingsvc.ListParams{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return params, err
	}
	params.Limit = limit
	return params, nil
}

// ListMyBookings returns the authenticated guest's bookings.
func ListMyBookings(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := bookingListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForGuest(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListListingBookings returns bookings on one of the host's listings.
func ListListingBookings(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := uuid.Parse(chi.URLParam(r, "listingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}
		params, err := bookingListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForListing(r.Context(), listingID, userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func bookingDecision(
	svc bookingsvc.Service,
	logg *logger.Logger,
	decide func(ctx context.Context, input bookingsvc.DecisionInput) (*bookingsvc.DecisionResult, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}

		result, err := decide(r.Context(), bookingsvc.DecisionInput{BookingID: bookingID, ActorID: userID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ConfirmBooking lets the listing's host confirm a pending booking.
func ConfirmBooking(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingDecision(svc, logg, func(ctx context.Context, input bookingsvc.DecisionInput) (*bookingsvc.DecisionResult, error) {
		return svc.Confirm(ctx, input)
	})
}

// RejectBooking lets the listing's host reject a booking.
func RejectBooking(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingDecision(svc, logg, func(ctx context.Context, input bookingsvc.DecisionInput) (*bookingsvc.DecisionResult, error) {
		return svc.Reject(ctx, input)
	})
}
