// Package api provides the HTTP ingestion endpoint for external activity
// events.
//
// Contract: all three payload sections (user, action, event) are validated
// before any write. A validation failure responds 422 with a field->messages
// map and writes nothing. Success runs the whole ingestion in one store
// transaction and responds 201 with no body. A store fault responds 500 with
// a generic error-kind string; internal detail stays in the logs.
package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/groundswell/listcutter/internal/core/store"
	"github.com/groundswell/listcutter/internal/listcutter"
	"github.com/groundswell/listcutter/internal/types"
	"go.uber.org/zap"
)

// Service handles ingestion requests. Thin orchestration over the store.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

// NewService creates the ingestion service.
func NewService(st *store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// UserPayload is the supporter identity section of an ingestion request.
// Email is required; everything else is optional profile data. Unrecognized
// keys are ignored (standard encoding/json behavior), deterministically.
type UserPayload struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Postcode      string `json:"postcode"`
	MobileNumber  string `json:"mobile_number"`
	HomeNumber    string `json:"home_number"`
	StreetAddress string `json:"street_address"`
	Suburb        string `json:"suburb"`
	State         string `json:"state"`
	CountryISO    string `json:"country_iso"`
	IsMember      *bool  `json:"is_member"`
}

// EventRequest is the body of POST /api/external_activity_events.
type EventRequest struct {
	MovementID        int64       `json:"movement_id"`
	Source            string      `json:"source"`
	ActionSlug        string      `json:"action_slug"`
	Partner           string      `json:"partner"`
	ActionLanguageISO string      `json:"action_language_iso"`
	Tags              []string    `json:"tags"`
	Role              string      `json:"role"`
	Activity          string      `json:"activity"`
	User              UserPayload `json:"user"`
}

// validate collects every field failure; nothing is written while any exist.
func (r *EventRequest) validate() listcutter.FieldErrors {
	errs := listcutter.FieldErrors{}

	if r.MovementID <= 0 {
		errs.Add("movement_id", "is required")
	}
	if r.Source == "" {
		errs.Add("source", "is required")
	}
	if r.ActionSlug == "" {
		errs.Add("action_slug", "is required")
	}
	if !types.Activity(r.Activity).Valid() {
		errs.Add("activity", "is not included in the list")
	}
	if r.User.Email == "" {
		errs.Add("email", "is required")
	} else if !strings.Contains(r.User.Email, "@") {
		errs.Add("email", "is not a valid email address")
	}

	return errs
}

// Create handles POST /api/external_activity_events.
func (s *Service) Create(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed_request_body"})
	}

	if errs := req.validate(); errs.Any() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errs)
	}

	isMember := true
	if req.User.IsMember != nil {
		isMember = *req.User.IsMember
	}

	in := store.Ingestion{
		Movement:    types.MovementID(req.MovementID),
		Source:      req.Source,
		ActionSlug:  req.ActionSlug,
		Partner:     req.Partner,
		LanguageISO: req.ActionLanguageISO,
		Tags:        req.Tags,
		Role:        req.Role,
		Activity:    types.Activity(req.Activity),
		User: store.UserParams{
			Email:         req.User.Email,
			FirstName:     req.User.FirstName,
			LastName:      req.User.LastName,
			Postcode:      req.User.Postcode,
			MobileNumber:  req.User.MobileNumber,
			HomeNumber:    req.User.HomeNumber,
			StreetAddress: req.User.StreetAddress,
			Suburb:        req.User.Suburb,
			State:         req.User.State,
			CountryISO:    req.User.CountryISO,
			IsMember:      isMember,
		},
	}

	if _, err := s.store.Ingest(c.Context(), in); err != nil {
		s.log.Error("ingestion failed",
			zap.Int64("movement_id", req.MovementID),
			zap.String("action_slug", req.ActionSlug),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": FaultKind(err)})
	}

	// created, deliberately bodyless
	return c.Status(fiber.StatusCreated).Send(nil)
}
