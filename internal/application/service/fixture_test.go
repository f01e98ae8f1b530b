package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/internal/infrastructure/memstore"
	infraRepo "github.com/sangkips/enquiry-api/internal/infrastructure/repository"
	"github.com/sangkips/enquiry-api/pkg/eventbus"
	"github.com/sangkips/enquiry-api/pkg/logger"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

var admin = entity.Principal{ID: primitive.NewObjectID().Hex(), Name: "Admin", Role: enum.RoleAdmin}

type env struct {
	store       *memstore.Store
	visitors    repository.VisitorRepository
	enquiries   repository.EnquiryRepository
	users       repository.UserRepository
	execs       repository.ExecutiveServiceRepository
	chats       repository.ChatMessageRepository
	faqs        repository.FAQRepository
	articles    repository.ArticleRepository
	bus         eventbus.EventBus
	classifier  *StatusClassifier
	status      *StatusService
	assignments *AssignmentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memstore.New()
	log := logger.Discard()
	e := &env{
		store:      store,
		visitors:   infraRepo.NewVisitorRepository(store),
		enquiries:  infraRepo.NewEnquiryRepository(store),
		users:      infraRepo.NewUserRepository(store),
		execs:      infraRepo.NewExecutiveServiceRepository(store),
		chats:      infraRepo.NewChatMessageRepository(store),
		faqs:       infraRepo.NewFAQRepository(store),
		articles:   infraRepo.NewArticleRepository(store),
		bus:        eventbus.NewEventPublisher(log),
		classifier: NewStatusClassifier(nil, nil),
	}
	e.status = NewStatusService(e.visitors, e.enquiries, e.classifier, e.bus, log)
	e.status.now = func() time.Time { return testNow }
	e.assignments = NewAssignmentService(e.visitors, e.enquiries, e.users, e.bus, nil, log)
	e.assignments.now = func() time.Time { return testNow }
	return e
}

func (e *env) seedVisitor(t *testing.T, mutate func(v *entity.Visitor)) *entity.Visitor {
	t.Helper()
	v := &entity.Visitor{
		ID:        primitive.NewObjectID(),
		Name:      "Rahul Patil",
		Email:     "rahul@example.com",
		Service:   "Water Testing",
		Source:    enum.SourceWebsite,
		Status:    "new",
		Version:   1,
		CreatedAt: testNow,
	}
	if mutate != nil {
		mutate(v)
	}
	require.NoError(t, e.visitors.Create(context.Background(), v))
	return v
}

func (e *env) seedEnquiry(t *testing.T, visitor *entity.Visitor) *entity.Enquiry {
	t.Helper()
	q := &entity.Enquiry{
		ID:        primitive.NewObjectID(),
		Name:      "Rahul Patil",
		Email:     "rahul@example.com",
		Service:   "Water Testing",
		Status:    "new",
		CreatedAt: testNow,
	}
	if visitor != nil {
		id := visitor.ID
		q.VisitorID = &id
		q.Assignment = visitor.Assignment
	}
	require.NoError(t, e.enquiries.Create(context.Background(), q))
	return q
}

func (e *env) seedUser(t *testing.T, name string, role enum.Role) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     slugEmail(name),
		Role:      role,
		Active:    true,
		CreatedAt: testNow,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func slugEmail(name string) string {
	b := make([]rune, 0, len(name))
	for _, r := range name {
		if r == ' ' {
			r = '.'
		}
		b = append(b, r)
	}
	return strings.ToLower(string(b)) + "@example.com"
}

func int64Ptr(v int64) *int64 { return &v }

func logDiscard() *logrus.Logger { return logger.Discard() }
