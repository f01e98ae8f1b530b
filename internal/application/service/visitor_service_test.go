package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/logger"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

func newVisitorService(e *env) *VisitorService {
	s := NewVisitorService(e.visitors, logger.Discard())
	s.now = func() time.Time { return testNow }
	return s
}

func TestCreateVisitor_ContactInvariant(t *testing.T) {
	e := newEnv(t)
	s := newVisitorService(e)
	ctx := context.Background()

	v, err := s.CreateVisitor(ctx, nil, &CreateVisitorInput{Name: "Anita", Email: " A@X.com ", Service: "Soil Testing"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v.Email)
	assert.Equal(t, "new", v.Status)
	assert.Equal(t, enum.SourceWebsite, v.Source)
	assert.Equal(t, int64(1), v.Version)

	_, err = s.CreateVisitor(ctx, nil, &CreateVisitorInput{Name: "Phone only", Phone: "9876543210"})
	require.NoError(t, err)

	_, err = s.CreateVisitor(ctx, nil, &CreateVisitorInput{Name: "Nobody"})
	require.ErrorIs(t, err, apperror.ErrUnprocessable)
	appErr := apperror.GetAppError(err)
	require.NotEmpty(t, appErr.Errors)
	assert.Equal(t, "email or phone is required", appErr.Errors[0].Message)

	_, err = s.CreateVisitor(ctx, nil, &CreateVisitorInput{Name: "Bad", Email: "not-an-email"})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)

	_, err = s.CreateVisitor(ctx, nil, &CreateVisitorInput{Name: "Bad", Email: "a@x.com", Source: "fax"})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestCreateOrTouch_ReusesKnownContact(t *testing.T) {
	e := newEnv(t)
	s := newVisitorService(e)
	ctx := context.Background()

	first, created, err := s.CreateOrTouch(ctx, &CreateVisitorInput{Name: "Anita", Email: "anita@example.com", Source: enum.SourceChatbot})
	require.NoError(t, err)
	assert.True(t, created)

	s.now = func() time.Time { return testNow.Add(time.Hour) }
	again, created, err := s.CreateOrTouch(ctx, &CreateVisitorInput{Name: "Anita", Email: "ANITA@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.LastInteractionAt.Equal(testNow.Add(time.Hour)))

	n, err := e.visitors.Count(ctx, filter.All())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListVisitors_ScopedAndFiltered(t *testing.T) {
	e := newEnv(t)
	s := newVisitorService(e)
	ctx := context.Background()

	exec := entity.Principal{Name: "Sanjana Pawar", Role: enum.RoleSalesExecutive}
	e.seedVisitor(t, func(v *entity.Visitor) { v.AgentName = "Sanjana Pawar"; v.Name = "Water Co" })
	e.seedVisitor(t, func(v *entity.Visitor) { v.SalesExecutiveName = "Sanjana Pawar"; v.Status = "contacted" })
	e.seedVisitor(t, func(v *entity.Visitor) { v.AgentName = "Someone Else" })

	all, err := s.ListVisitors(ctx, ResolveScope(exec, nil), VisitorListFilter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	byStatus, err := s.ListVisitors(ctx, ResolveScope(exec, nil), VisitorListFilter{Status: "contacted"}, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, byStatus.Items, 1)
	assert.Equal(t, "contacted", byStatus.Items[0].Status)

	bySearch, err := s.ListVisitors(ctx, filter.All(), VisitorListFilter{Search: "water"}, nil)
	require.NoError(t, err)
	assert.Len(t, bySearch.Items, 1)
}

func TestUpdateVisitor(t *testing.T) {
	e := newEnv(t)
	s := newVisitorService(e)
	ctx := context.Background()
	v := e.seedVisitor(t, nil)

	org := "Acme Labs"
	updated, err := s.UpdateVisitor(ctx, filter.All(), admin, &UpdateVisitorInput{ID: v.ID, Organization: &org, Version: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", updated.Organization)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Admin", updated.LastModifiedBy)

	_, err = s.UpdateVisitor(ctx, filter.All(), admin, &UpdateVisitorInput{ID: v.ID, Organization: &org, Version: int64Ptr(1)})
	assert.ErrorIs(t, err, apperror.ErrStaleVersion)

	// clearing the only contact breaks the invariant
	blank := ""
	_, err = s.UpdateVisitor(ctx, filter.All(), admin, &UpdateVisitorInput{ID: v.ID, Email: &blank})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)

	_, err = s.UpdateVisitor(ctx, filter.None(), admin, &UpdateVisitorInput{ID: v.ID, Organization: &org})
	assert.True(t, apperror.IsNotFound(err))
}

func TestExport_WritesScopedRows(t *testing.T) {
	e := newEnv(t)
	s := newVisitorService(e)
	ctx := context.Background()
	e.seedVisitor(t, func(v *entity.Visitor) { v.Name = "First"; v.Region = "Pune" })
	e.seedVisitor(t, func(v *entity.Visitor) { v.Name = "Second"; v.Region = "Pune" })
	e.seedVisitor(t, func(v *entity.Visitor) { v.Name = "Elsewhere"; v.Region = "Nagpur" })

	var buf bytes.Buffer
	n, err := s.Export(ctx, filter.Eq("region", "Pune"), VisitorListFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.ElementsMatch(t, []string{"First", "Second"}, []string{rows[1][1], rows[2][1]})
}
