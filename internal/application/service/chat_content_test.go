package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/infrastructure/search"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/logger"
)

const fallback = "Thanks! Our team will get back to you shortly."

func newContentAndChat(t *testing.T, e *env) (*ContentService, *ChatService) {
	t.Helper()
	index, err := search.NewFAQIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	log := logger.Discard()
	content := NewContentService(e.faqs, e.articles, index, log)
	content.now = func() time.Time { return testNow }
	chat := NewChatService(e.chats, e.visitors, newVisitorService(e), index, fallback, 0.1, log)
	chat.now = func() time.Time { return testNow }
	return content, chat
}

func strPtr(s string) *string { return &s }

func TestChat_FirstMessageCreatesVisitorAndAnswersFromFAQ(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	content, chat := newContentAndChat(t, e)

	faq, err := content.CreateFAQ(ctx, &FAQInput{
		Question: strPtr("How long does water testing take?"),
		Answer:   strPtr("Water test reports are ready in 3 working days."),
		Category: strPtr("Water Testing"),
		Keywords: []string{"water", "turnaround", "water"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "turnaround"}, faq.Keywords)

	reply, err := chat.PostMessage(ctx, &PostMessageInput{
		Name:    "Anita",
		Email:   "anita@example.com",
		Message: "how long does water testing take",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.FAQID)
	assert.Equal(t, faq.ID, *reply.FAQID)
	assert.Equal(t, faq.Answer, reply.Bot.Message)
	assert.Equal(t, enum.SenderBot, reply.Bot.Sender)

	visitor, err := e.visitors.GetByID(ctx, reply.VisitorID, filter.All())
	require.NoError(t, err)
	assert.Equal(t, enum.SourceChatbot, visitor.Source)

	reply2, err := chat.PostMessage(ctx, &PostMessageInput{VisitorID: &reply.VisitorID, Message: "zzz qqq"})
	require.NoError(t, err)
	assert.Nil(t, reply2.FAQID)
	assert.Equal(t, fallback, reply2.Bot.Message)

	msgs, err := chat.Messages(ctx, filter.All(), reply.VisitorID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, enum.SenderUser, msgs[0].Sender)
	assert.Equal(t, "how long does water testing take", msgs[0].Message)
}

func TestChat_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, chat := newContentAndChat(t, e)

	_, err := chat.PostMessage(ctx, &PostMessageInput{Email: "a@x.com", Name: "A", Message: "  "})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)

	_, err = chat.PostMessage(ctx, &PostMessageInput{Name: "A", Message: "hello"})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)

	missing := primitive.NewObjectID()
	_, err = chat.PostMessage(ctx, &PostMessageInput{VisitorID: &missing, Message: "hello"})
	assert.True(t, apperror.IsNotFound(err))

	v := e.seedVisitor(t, nil)
	_, err = chat.Messages(ctx, filter.None(), v.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestChat_ContactMatchDoesNotRevealVisitorID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, chat := newContentAndChat(t, e)
	existing := e.seedVisitor(t, func(v *entity.Visitor) { v.Email = "meera@example.com" })

	reply, err := chat.PostMessage(ctx, &PostMessageInput{Name: "Someone", Email: "meera@example.com", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, reply.VisitorID)
	assert.Nil(t, reply.VisitorRef)

	fresh, err := chat.PostMessage(ctx, &PostMessageInput{Name: "Tara", Email: "tara@example.com", Message: "hello"})
	require.NoError(t, err)
	require.NotNil(t, fresh.VisitorRef)
	assert.Equal(t, fresh.VisitorID, *fresh.VisitorRef)

	again, err := chat.PostMessage(ctx, &PostMessageInput{VisitorID: fresh.VisitorRef, Message: "one more"})
	require.NoError(t, err)
	require.NotNil(t, again.VisitorRef)
	assert.Equal(t, fresh.VisitorID, *again.VisitorRef)
}

func TestContent_InactiveFAQLeavesIndex(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	content, chat := newContentAndChat(t, e)

	faq, err := content.CreateFAQ(ctx, &FAQInput{
		Question: strPtr("Do you test soil samples?"),
		Answer:   strPtr("Yes, we test soil."),
	})
	require.NoError(t, err)

	_, err = content.UpdateFAQ(ctx, faq.ID, &FAQInput{Active: boolPtr(false)})
	require.NoError(t, err)

	reply, err := chat.PostMessage(ctx, &PostMessageInput{Phone: "99999", Name: "B", Message: "do you test soil samples"})
	require.NoError(t, err)
	assert.Nil(t, reply.FAQID)

	_, err = content.GetFAQ(ctx, faq.ID, false)
	assert.True(t, apperror.IsNotFound(err))
	require.NoError(t, content.DeleteFAQ(ctx, faq.ID))
}

func TestContent_ArticleSlugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	content, _ := newContentAndChat(t, e)

	a, err := content.CreateArticle(ctx, admin, &ArticleInput{Title: strPtr("Why Test Water?"), Body: strPtr("Because."), Published: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "why-test-water", a.Slug)
	assert.Equal(t, "Admin", a.Author)

	b, err := content.CreateArticle(ctx, admin, &ArticleInput{Title: strPtr("Why test water"), Body: strPtr("Draft.")})
	require.NoError(t, err)
	assert.NotEqual(t, a.Slug, b.Slug)

	got, err := content.GetArticle(ctx, "why-test-water", false)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = content.GetArticle(ctx, b.ID.Hex(), false)
	assert.True(t, apperror.IsNotFound(err))
	_, err = content.GetArticle(ctx, b.ID.Hex(), true)
	require.NoError(t, err)

	list, err := content.ListArticles(ctx, true, "test", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)

	_, err = content.CreateArticle(ctx, admin, &ArticleInput{Body: strPtr("no title")})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func boolPtr(b bool) *bool { return &b }

