package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"panchayat/internal/apperr"
	"panchayat/internal/docstore"
	"panchayat/internal/models"
	"panchayat/internal/security"
)

var ErrUnknownServiceType = apperr.New(apperr.KindValidation, "unknown_service_type", "service type does not exist or is not offered")

type ServiceRequestService struct {
	requests docstore.Store[models.ServiceRequest]
	types    docstore.Store[models.ServiceType]
	now      func() time.Time
	log      zerolog.Logger
}

func NewServiceRequestService(requests docstore.Store[models.ServiceRequest], types docstore.Store[models.ServiceType], log zerolog.Logger) *ServiceRequestService {
	return &ServiceRequestService{
		requests: requests,
		types:    types,
		now:      time.Now,
		log:      log,
	}
}

// Submit files a request from applicant. New requests always start pending.
func (s *ServiceRequestService) Submit(ctx context.Context, applicant security.Identity, req models.ServiceRequest) (models.ServiceRequest, error) {
	serviceType, err := s.types.FindByKey(ctx, req.ServiceTypeID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.ServiceRequest{}, ErrUnknownServiceType
		}
		return models.ServiceRequest{}, err
	}
	if !serviceType.IsActive {
		return models.ServiceRequest{}, ErrUnknownServiceType
	}

	req.Details = strings.TrimSpace(req.Details)
	req.Status = models.ServiceRequestPending
	req.Remarks = ""
	req.Stamp(applicant.UserID, s.now().UTC(), nil)

	if err := s.requests.Create(ctx, &req); err != nil {
		return models.ServiceRequest{}, err
	}
	s.log.Info().Str("service_type", req.ServiceTypeID).Str("applicant", applicant.UserID).Msg("service request submitted")
	return req, nil
}

func (s *ServiceRequestService) Mine(ctx context.Context, applicant security.Identity) ([]models.ServiceRequest, error) {
	return s.requests.FindMany(ctx, docstore.Filter{"created_by": applicant.UserID}, docstore.NewestFirst)
}

func (s *ServiceRequestService) List(ctx context.Context, status models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	filter := docstore.Filter{}
	if status != "" {
		if !status.Valid() {
			return nil, apperr.Validation("unknown status")
		}
		filter["status"] = status
	}
	return s.requests.FindMany(ctx, filter, docstore.NewestFirst)
}

func (s *ServiceRequestService) UpdateStatus(ctx context.Context, reviewer security.Identity, key string, status models.ServiceRequestStatus, remarks string) (models.ServiceRequest, error) {
	if !status.Valid() {
		return models.ServiceRequest{}, apperr.Validation("unknown status")
	}

	req, err := s.requests.FindByKey(ctx, key)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	req.Status = status
	req.Remarks = strings.TrimSpace(remarks)
	req.UpdatedAt = s.now().UTC()

	if err := s.requests.UpdateByKey(ctx, key, &req); err != nil {
		return models.ServiceRequest{}, err
	}
	s.log.Info().
		Str("request_id", key).
		Str("status", string(status)).
		Str("reviewer", reviewer.UserID).
		Msg("service request status changed")
	return req, nil
}
