package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayat/internal/apperr"
	"panchayat/internal/docstore"
	"panchayat/internal/models"
	"panchayat/internal/security"
)

func newServiceRequests(t *testing.T) (*ServiceRequestService, *memDocs[models.ServiceRequest, *models.ServiceRequest], models.ServiceType) {
	t.Helper()
	requests := newMemDocs[models.ServiceRequest, *models.ServiceRequest]()
	types := newMemDocs[models.ServiceType, *models.ServiceType]()

	typeSvc := NewContentService[models.ServiceType, *models.ServiceType]("service-types", types, nil, discardLogger())
	st, err := typeSvc.Create(context.Background(), editor, models.ServiceType{Name: "Birth certificate", IsActive: true})
	require.NoError(t, err)

	return NewServiceRequestService(requests, types, discardLogger()), requests, st
}

func TestSubmitServiceRequest(t *testing.T) {
	svc, _, st := newServiceRequests(t)

	req, err := svc.Submit(context.Background(), voter, models.ServiceRequest{
		ServiceTypeID: st.ID.Hex(),
		Details:       "  for my daughter  ",
		Status:        models.ServiceRequestApproved,
		Remarks:       "self-approved",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceRequestPending, req.Status)
	assert.Empty(t, req.Remarks)
	assert.Equal(t, "for my daughter", req.Details)
	assert.Equal(t, voter.UserID, req.CreatedBy)
}

func TestSubmitUnknownServiceType(t *testing.T) {
	svc, _, _ := newServiceRequests(t)

	_, err := svc.Submit(context.Background(), voter, models.ServiceRequest{ServiceTypeID: "nope", Details: "x"})
	assert.ErrorIs(t, err, ErrUnknownServiceType)
}

func TestMineFiltersByApplicant(t *testing.T) {
	svc, requests, _ := newServiceRequests(t)

	_, err := svc.Mine(context.Background(), voter)
	require.NoError(t, err)
	assert.Equal(t, docstore.Filter{"created_by": voter.UserID}, requests.lastFilter)

	_, err = svc.List(context.Background(), models.ServiceRequestStatus("lost"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	svc, _, st := newServiceRequests(t)
	req, err := svc.Submit(context.Background(), voter, models.ServiceRequest{ServiceTypeID: st.ID.Hex(), Details: "x"})
	require.NoError(t, err)

	reviewer := security.Identity{UserID: "sarpanch-1", Role: models.UserRoleSarpanch}
	updated, err := svc.UpdateStatus(context.Background(), reviewer, req.ID.Hex(), models.ServiceRequestApproved, "documents verified")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceRequestApproved, updated.Status)
	assert.Equal(t, "documents verified", updated.Remarks)
	assert.Equal(t, voter.UserID, updated.CreatedBy)

	_, err = svc.UpdateStatus(context.Background(), reviewer, req.ID.Hex(), "closed", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
