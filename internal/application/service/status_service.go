package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/config"
	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/eventbus"
)

// NormalizeStatus folds a raw status into its canonical token: lower case,
// with runs of whitespace, '-', '_', '.' and '/' collapsed to one '_'.
// "Closed-Won", " closed won " and "CLOSED_WON" all become "closed_won".
func NormalizeStatus(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), isStatusSeparator)
	return strings.Join(fields, "_")
}

func isStatusSeparator(r rune) bool {
	switch r {
	case '-', '_', '.', '/':
		return true
	}
	return unicode.IsSpace(r)
}

// StatusClassifier maps raw statuses onto lead / pending / other
type StatusClassifier struct {
	lead    map[string]struct{}
	pending map[string]struct{}
}

// NewStatusClassifier builds a classifier from raw status lists. An empty
// list falls back to the default set for that class.
func NewStatusClassifier(lead, pending []string) *StatusClassifier {
	if len(lead) == 0 {
		lead = config.SplitList(config.DefaultLeadStatuses)
	}
	if len(pending) == 0 {
		pending = config.SplitList(config.DefaultPendingStatuses)
	}
	return &StatusClassifier{lead: tokenSet(lead), pending: tokenSet(pending)}
}

func tokenSet(raw []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if t := NormalizeStatus(r); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// Classify never fails; a status in both sets counts as a lead
func (c *StatusClassifier) Classify(raw string) enum.StatusClass {
	token := NormalizeStatus(raw)
	if _, ok := c.lead[token]; ok {
		return enum.StatusClassLead
	}
	if _, ok := c.pending[token]; ok {
		return enum.StatusClassPending
	}
	return enum.StatusClassOther
}

// StatusChanged is published after a status change is stored
type StatusChanged struct {
	Kind   enum.RecordKind
	ID     primitive.ObjectID
	Status string
	Class  enum.StatusClass
	Actor  entity.Principal
	At     time.Time
}

// StatusService records status changes with their history entry
type StatusService struct {
	visitorRepo repository.VisitorRepository
	enquiryRepo repository.EnquiryRepository
	classifier  *StatusClassifier
	bus         eventbus.EventBus
	log         *logrus.Logger
	now         func() time.Time
}

// NewStatusService creates a new status service
func NewStatusService(
	visitorRepo repository.VisitorRepository,
	enquiryRepo repository.EnquiryRepository,
	classifier *StatusClassifier,
	bus eventbus.EventBus,
	log *logrus.Logger,
) *StatusService {
	return &StatusService{
		visitorRepo: visitorRepo,
		enquiryRepo: enquiryRepo,
		classifier:  classifier,
		bus:         bus,
		log:         log,
		now:         time.Now,
	}
}

// SetStatusInput represents a status change request
type SetStatusInput struct {
	ID     primitive.ObjectID
	Status string
	Notes  string
	// Version, when set, must match the visitor's current version
	Version *int64
}

// Classifier returns the classifier used for reporting
func (s *StatusService) Classifier() *StatusClassifier {
	return s.classifier
}

// SetStatus changes the status of a visitor or enquiry
func (s *StatusService) SetStatus(ctx context.Context, kind enum.RecordKind, scope filter.Filter, actor entity.Principal, input *SetStatusInput) error {
	switch kind {
	case enum.RecordVisitor:
		_, err := s.SetVisitorStatus(ctx, scope, actor, input)
		return err
	case enum.RecordEnquiry:
		_, err := s.SetEnquiryStatus(ctx, scope, actor, input)
		return err
	}
	return apperror.NewFieldError("kind", "kind must be visitor or enquiry")
}

// SetVisitorStatus sets the visitor's status and appends to its pipeline history
func (s *StatusService) SetVisitorStatus(ctx context.Context, scope filter.Filter, actor entity.Principal, input *SetStatusInput) (*entity.Visitor, error) {
	status, err := cleanStatus(input.Status)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	class := s.classifier.Classify(status)

	set := map[string]any{
		"status":         status,
		"lastModifiedBy": actor.Name,
		"lastModifiedAt": now,
	}
	if class == enum.StatusClassLead {
		set["isConverted"] = true
	}

	visitor, err := s.visitorRepo.Update(ctx, input.ID, scope, input.Version, repository.Patch{
		Set:  set,
		Push: map[string]any{"pipelineHistory": historyEntry(status, actor, now, input.Notes)},
		Inc:  map[string]int64{"version": 1},
	})
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	if visitor == nil {
		return nil, apperror.NewNotFoundError("Visitor")
	}

	s.changed(ctx, enum.RecordVisitor, input.ID, status, class, actor, now)
	return visitor, nil
}

// SetEnquiryStatus sets the enquiry's status and appends to its status history
func (s *StatusService) SetEnquiryStatus(ctx context.Context, scope filter.Filter, actor entity.Principal, input *SetStatusInput) (*entity.Enquiry, error) {
	status, err := cleanStatus(input.Status)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	class := s.classifier.Classify(status)

	enquiry, err := s.enquiryRepo.Update(ctx, input.ID, scope, repository.Patch{
		Set: map[string]any{
			"status":         status,
			"lastModifiedBy": actor.Name,
			"lastModifiedAt": now,
		},
		Push: map[string]any{"statusHistory": historyEntry(status, actor, now, input.Notes)},
	})
	if err != nil {
		return nil, err
	}
	if enquiry == nil {
		return nil, apperror.NewNotFoundError("Enquiry")
	}

	s.changed(ctx, enum.RecordEnquiry, input.ID, status, class, actor, now)
	return enquiry, nil
}

func (s *StatusService) changed(ctx context.Context, kind enum.RecordKind, id primitive.ObjectID, status string, class enum.StatusClass, actor entity.Principal, at time.Time) {
	s.log.WithFields(logrus.Fields{
		"kind":   kind,
		"id":     id.Hex(),
		"status": status,
		"class":  class,
		"actor":  actor.Name,
	}).Info("status changed")
	if s.bus != nil {
		s.bus.Publish(ctx, &StatusChanged{Kind: kind, ID: id, Status: status, Class: class, Actor: actor, At: at})
	}
}

func historyEntry(status string, actor entity.Principal, at time.Time, notes string) entity.PipelineEntry {
	return entity.PipelineEntry{
		Status:    status,
		ChangedAt: at,
		ChangedBy: actor.Name,
		Notes:     strings.TrimSpace(notes),
	}
}

// cleanStatus keeps the caller's spelling; only surrounding space is dropped
func cleanStatus(raw string) (string, error) {
	status := strings.TrimSpace(raw)
	if status == "" {
		return "", apperror.NewFieldError("status", "status is required")
	}
	if len(status) > 100 {
		return "", apperror.NewFieldError("status", "status must be at most 100 characters")
	}
	return status, nil
}
