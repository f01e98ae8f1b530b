package service

import (
	"context"
	"time"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
	unassignedLabel    = "Unassigned"
)

// DashboardService computes dashboard figures by aggregating over the
// caller's scope on every read
type DashboardService struct {
	visitorRepo repository.VisitorRepository
	enquiryRepo repository.EnquiryRepository
	classifier  *StatusClassifier
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(visitorRepo repository.VisitorRepository, enquiryRepo repository.EnquiryRepository, classifier *StatusClassifier) *DashboardService {
	return &DashboardService{visitorRepo: visitorRepo, enquiryRepo: enquiryRepo, classifier: classifier, now: time.Now}
}

// StatusCount is the number of visitors carrying one raw status
type StatusCount struct {
	Status string           `json:"status"`
	Class  enum.StatusClass `json:"class"`
	Count  int64            `json:"count"`
	Amount float64          `json:"amount"`
}

// DashboardSummary holds the headline figures
type DashboardSummary struct {
	TotalVisitors  int64                      `json:"totalVisitors"`
	TotalEnquiries int64                      `json:"totalEnquiries"`
	Converted      int64                      `json:"converted"`
	TotalAmount    float64                    `json:"totalAmount"`
	Classes        map[enum.StatusClass]int64 `json:"classes"`
	Statuses       []StatusCount              `json:"statuses"`
}

// Summary returns totals and the lead / pending / other split
func (s *DashboardService) Summary(ctx context.Context, scope filter.Filter) (*DashboardSummary, error) {
	buckets, err := s.visitorRepo.Group(ctx, scope, repository.Grouping{
		Field:     entity.StatusFields[0],
		Fallbacks: entity.StatusFields[1:],
		SumField:  "amount",
	})
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Classes: map[enum.StatusClass]int64{
			enum.StatusClassLead:    0,
			enum.StatusClassPending: 0,
			enum.StatusClassOther:   0,
		},
		Statuses: make([]StatusCount, 0, len(buckets)),
	}
	for _, b := range buckets {
		class := s.classifier.Classify(b.Key)
		summary.TotalVisitors += b.Count
		summary.TotalAmount += b.Sum
		summary.Classes[class] += b.Count
		summary.Statuses = append(summary.Statuses, StatusCount{Status: b.Key, Class: class, Count: b.Count, Amount: b.Sum})
	}

	if summary.Converted, err = s.visitorRepo.Count(ctx, filter.And(scope, filter.Eq("isConverted", true))); err != nil {
		return nil, err
	}
	if summary.TotalEnquiries, err = s.enquiryRepo.Count(ctx, scope); err != nil {
		return nil, err
	}
	return summary, nil
}

// SourceCount is the number of visitors that arrived through one channel
type SourceCount struct {
	Source    string `json:"source"`
	Count     int64  `json:"count"`
	Converted int64  `json:"converted"`
}

// Sources breaks visitors down by acquisition channel
func (s *DashboardService) Sources(ctx context.Context, scope filter.Filter) ([]SourceCount, error) {
	all, err := s.visitorRepo.Group(ctx, scope, repository.Grouping{Field: "source"})
	if err != nil {
		return nil, err
	}
	converted, err := s.visitorRepo.Group(ctx, filter.And(scope, filter.Eq("isConverted", true)), repository.Grouping{Field: "source"})
	if err != nil {
		return nil, err
	}
	convertedBy := bucketCounts(converted)

	out := make([]SourceCount, 0, len(all))
	for _, b := range all {
		out = append(out, SourceCount{Source: b.Key, Count: b.Count, Converted: convertedBy[b.Key]})
	}
	return out, nil
}

// ExecutiveStats is one executive's pipeline in one assignment role
type ExecutiveStats struct {
	Role      enum.AssignmentRole `json:"role"`
	Name      string              `json:"name"`
	Leads     int64               `json:"leads"`
	Converted int64               `json:"converted"`
	Amount    float64             `json:"amount"`
}

// Executives reports leads, conversions and amount per assignee display name
func (s *DashboardService) Executives(ctx context.Context, scope filter.Filter) ([]ExecutiveStats, error) {
	var out []ExecutiveStats
	for _, role := range []enum.AssignmentRole{enum.AssignmentAgent, enum.AssignmentSalesExecutive, enum.AssignmentCustomerExecutive} {
		field := role.NameField()
		all, err := s.visitorRepo.Group(ctx, scope, repository.Grouping{Field: field, SumField: "amount"})
		if err != nil {
			return nil, err
		}
		converted, err := s.visitorRepo.Group(ctx, filter.And(scope, filter.Eq("isConverted", true)), repository.Grouping{Field: field})
		if err != nil {
			return nil, err
		}
		convertedBy := bucketCounts(converted)

		for _, b := range all {
			name := b.Key
			if name == "" {
				name = unassignedLabel
			}
			out = append(out, ExecutiveStats{
				Role:      role,
				Name:      name,
				Leads:     b.Count,
				Converted: convertedBy[b.Key],
				Amount:    b.Sum,
			})
		}
	}
	if out == nil {
		out = []ExecutiveStats{}
	}
	return out, nil
}

// TrendPoint is one month of new visitors and enquiries
type TrendPoint struct {
	Month     string `json:"month"`
	Visitors  int64  `json:"visitors"`
	Enquiries int64  `json:"enquiries"`
}

// Trends returns the last months of intake, oldest first. Months with no
// records are present with zero counts.
func (s *DashboardService) Trends(ctx context.Context, scope filter.Filter, months int) ([]TrendPoint, error) {
	if months <= 0 {
		months = defaultTrendMonths
	}
	if months > maxTrendMonths {
		months = maxTrendMonths
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	f := filter.And(scope, filter.Gte("createdAt", start))
	byMonth := repository.Grouping{MonthOf: "createdAt"}

	visitors, err := s.visitorRepo.Group(ctx, f, byMonth)
	if err != nil {
		return nil, err
	}
	enquiries, err := s.enquiryRepo.Group(ctx, f, byMonth)
	if err != nil {
		return nil, err
	}
	visitorsBy, enquiriesBy := bucketCounts(visitors), bucketCounts(enquiries)

	points := make([]TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		points = append(points, TrendPoint{Month: key, Visitors: visitorsBy[key], Enquiries: enquiriesBy[key]})
	}
	return points, nil
}

func bucketCounts(buckets []repository.Bucket) map[string]int64 {
	counts := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Key] = b.Count
	}
	return counts
}
