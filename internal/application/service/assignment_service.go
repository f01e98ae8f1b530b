package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/eventbus"
	"github.com/sangkips/enquiry-api/pkg/metrics"
)

const reconcileBatchSize = 200

// AssignmentService writes assignments onto visitors and copies them to the
// visitors' linked enquiries
type AssignmentService struct {
	visitorRepo repository.VisitorRepository
	enquiryRepo repository.EnquiryRepository
	userRepo    repository.UserRepository
	bus         eventbus.EventBus
	metrics     *metrics.Metrics
	log         *logrus.Logger
	now         func() time.Time
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	visitorRepo repository.VisitorRepository,
	enquiryRepo repository.EnquiryRepository,
	userRepo repository.UserRepository,
	bus eventbus.EventBus,
	m *metrics.Metrics,
	log *logrus.Logger,
) *AssignmentService {
	return &AssignmentService{
		visitorRepo: visitorRepo,
		enquiryRepo: enquiryRepo,
		userRepo:    userRepo,
		bus:         bus,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// AssignInput represents an assignment request
type AssignInput struct {
	VisitorID    primitive.ObjectID
	Role         enum.AssignmentRole
	IdentityID   string
	IdentityName string
	Reason       string
	Version      *int64
}

// SyncResult reports how far an assignment reached the linked enquiries.
// Partial is a warning; the visitor write itself succeeded.
type SyncResult struct {
	Expected int64  `json:"expected"`
	Matched  int64  `json:"matched"`
	Modified int64  `json:"modified"`
	Partial  bool   `json:"partial"`
	Warning  string `json:"warning,omitempty"`
}

// AssignmentChanged is published after a visitor's assignment is stored
type AssignmentChanged struct {
	VisitorID   primitive.ObjectID
	VisitorName string
	Service     string
	Role        enum.AssignmentRole
	Assignee    entity.Identity
	Actor       entity.Principal
	At          time.Time
	Sync        SyncResult
}

// ReconcileReport summarises a reconciliation pass
type ReconcileReport struct {
	Visitors int64 `json:"visitors"`
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// Assign stores the identity in the role's slot of the visitor, appends an
// assignment history entry and copies the slot to every linked enquiry
func (s *AssignmentService) Assign(ctx context.Context, scope filter.Filter, actor entity.Principal, input *AssignInput) (*entity.Visitor, *SyncResult, error) {
	if !input.Role.IsValid() {
		return nil, nil, apperror.NewFieldError("role", "role must be one of: agent, salesExecutive, customerExecutive")
	}

	identity := entity.ParseIdentity(input.IdentityID, input.IdentityName)
	if identity.IsZero() {
		return nil, nil, apperror.NewFieldError("identity", "assignee id or name is required")
	}
	identity, err := s.withUserName(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	set := entity.AssignmentFields(input.Role, identity)
	set["lastModifiedBy"] = actor.Name
	set["lastModifiedAt"] = now

	visitor, err := s.visitorRepo.Update(ctx, input.VisitorID, scope, input.Version, repository.Patch{
		Set: set,
		Push: map[string]any{"assignmentHistory": entity.AssignmentEntry{
			Role:       input.Role,
			AssignedBy: actor.Name,
			AssignedTo: identity.Name(),
			AssignedAt: now,
			Reason:     strings.TrimSpace(input.Reason),
		}},
		Inc: map[string]int64{"version": 1},
	})
	if err != nil {
		return nil, nil, mapVersionConflict(err)
	}
	if visitor == nil {
		return nil, nil, apperror.NewNotFoundError("Visitor")
	}

	enquirySet := entity.AssignmentFields(input.Role, identity)
	enquirySet["lastModifiedBy"] = actor.Name
	enquirySet["lastModifiedAt"] = now
	result := s.propagate(ctx, visitor.ID, enquirySet)

	s.metrics.ObserveSync(string(input.Role), result.Partial)
	entry := s.log.WithFields(logrus.Fields{
		"visitor_id": visitor.ID.Hex(),
		"role":       input.Role,
		"assignee":   identity.Name(),
		"resolved":   identity.IsResolved(),
		"actor":      actor.Name,
		"expected":   result.Expected,
		"matched":    result.Matched,
	})
	if result.Partial {
		entry.Warn("assignment only partially reached linked enquiries")
	} else {
		entry.Info("assignment stored")
	}

	if s.bus != nil {
		s.bus.Publish(ctx, &AssignmentChanged{
			VisitorID:   visitor.ID,
			VisitorName: visitor.Name,
			Service:     visitor.Service,
			Role:        input.Role,
			Assignee:    identity,
			Actor:       actor,
			At:          now,
			Sync:        *result,
		})
	}
	return visitor, result, nil
}

// withUserName fills a resolved identity's missing display name from the user record
func (s *AssignmentService) withUserName(ctx context.Context, identity entity.Identity) (entity.Identity, error) {
	id, resolved := identity.ID()
	if !resolved || identity.Name() != "" {
		return identity, nil
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return identity, err
	}
	if user == nil {
		return identity, apperror.NewFieldError("identity", "no user exists with this id, supply a name")
	}
	return identity.WithName(user.Name), nil
}

// propagate copies fields onto the visitor's enquiries in one bulk write.
// A failure here never undoes the visitor write; it is reported as partial.
func (s *AssignmentService) propagate(ctx context.Context, visitorID primitive.ObjectID, set map[string]any) *SyncResult {
	result := &SyncResult{}

	expected, err := s.enquiryRepo.CountByVisitor(ctx, visitorID)
	if err != nil {
		result.Partial = true
		result.Warning = fmt.Sprintf("counting linked enquiries: %v", err)
		return result
	}
	result.Expected = expected
	if expected == 0 {
		return result
	}

	res, err := s.enquiryRepo.UpdateByVisitor(ctx, visitorID, repository.Patch{Set: set})
	if err != nil {
		result.Partial = true
		result.Warning = fmt.Sprintf("updating linked enquiries: %v", err)
		return result
	}
	result.Matched = res.Matched
	result.Modified = res.Modified
	if res.Matched < expected {
		result.Partial = true
		result.Warning = fmt.Sprintf("%d of %d linked enquiries updated", res.Matched, expected)
	}
	return result
}

// ReconcileVisitor copies the visitor's current assignment to its enquiries
func (s *AssignmentService) ReconcileVisitor(ctx context.Context, scope filter.Filter, id primitive.ObjectID) (*SyncResult, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if visitor == nil {
		return nil, apperror.NewNotFoundError("Visitor")
	}
	result := s.propagate(ctx, visitor.ID, visitor.Assignment.AllFields())
	s.metrics.ObserveReconciled(result.Modified)
	return result, nil
}

// Reconcile walks every visitor and copies its assignment to its enquiries.
// Only the assignment fields are written, so repeated runs converge on the
// same state.
func (s *AssignmentService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	after := primitive.NilObjectID

	for {
		batch, err := s.visitorRepo.Batch(ctx, filter.All(), after, reconcileBatchSize)
		if err != nil {
			return report, err
		}
		for i := range batch {
			v := &batch[i]
			res, err := s.enquiryRepo.UpdateByVisitor(ctx, v.ID, repository.Patch{Set: v.Assignment.AllFields()})
			if err != nil {
				return report, fmt.Errorf("reconciling visitor %s: %w", v.ID.Hex(), err)
			}
			report.Visitors++
			report.Matched += res.Matched
			report.Modified += res.Modified
		}
		if len(batch) < reconcileBatchSize {
			break
		}
		after = batch[len(batch)-1].ID
	}

	s.metrics.ObserveReconciled(report.Modified)
	s.log.WithFields(logrus.Fields{
		"visitors": report.Visitors,
		"matched":  report.Matched,
		"modified": report.Modified,
	}).Info("reconciliation finished")
	return report, nil
}
