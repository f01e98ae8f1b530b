package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
)

const (
	maxChatMessageLength = 2000
	transcriptLimit      = 500
)

// FAQMatcher finds the FAQ best answering a question
type FAQMatcher interface {
	Match(text string, minScore float64) (*entity.FAQ, float64, error)
}

// ChatService records chatbot conversations and answers from the FAQ index
type ChatService struct {
	chatRepo      repository.ChatMessageRepository
	visitorRepo   repository.VisitorRepository
	visitors      *VisitorService
	matcher       FAQMatcher
	fallbackReply string
	minScore      float64
	log           *logrus.Logger
	now           func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	chatRepo repository.ChatMessageRepository,
	visitorRepo repository.VisitorRepository,
	visitors *VisitorService,
	matcher FAQMatcher,
	fallbackReply string,
	minScore float64,
	log *logrus.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		visitorRepo:   visitorRepo,
		visitors:      visitors,
		matcher:       matcher,
		fallbackReply: fallbackReply,
		minScore:      minScore,
		log:           log,
		now:           time.Now,
	}
}

// PostMessageInput is one message typed into the chat widget. A first
// message carries contact details instead of a visitor id.
type PostMessageInput struct {
	VisitorID *primitive.ObjectID
	Name      string
	Email     string
	Phone     string
	Service   string
	Message   string
}

// ChatReply is the stored exchange returned to the widget. VisitorRef is
// only set when the caller sent the id or a new visitor was created, so a
// contact match never hands an existing visitor's id to an anonymous caller.
type ChatReply struct {
	VisitorID  primitive.ObjectID  `json:"-"`
	VisitorRef *primitive.ObjectID `json:"visitorId,omitempty"`
	User       *ChatLine           `json:"user"`
	Bot        *ChatLine           `json:"bot"`
	FAQID      *primitive.ObjectID `json:"faqId,omitempty"`
}

// ChatLine is a stored chat message as shown to the widget
type ChatLine struct {
	ID      primitive.ObjectID `json:"id"`
	Sender  enum.Sender        `json:"sender"`
	Message string             `json:"message"`
	At      time.Time          `json:"at"`
}

func lineOf(m *entity.ChatMessage) *ChatLine {
	return &ChatLine{ID: m.ID, Sender: m.Sender, Message: m.Message, At: m.At}
}

// PostMessage stores the visitor's message and the bot's reply
func (s *ChatService) PostMessage(ctx context.Context, input *PostMessageInput) (*ChatReply, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, apperror.NewFieldError("message", "message is required")
	}
	if len(text) > maxChatMessageLength {
		return nil, apperror.NewFieldError("message", "message must be at most 2000 characters")
	}

	visitorID, disclose, err := s.resolveVisitor(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	userMsg := &entity.ChatMessage{
		ID:        primitive.NewObjectID(),
		VisitorID: visitorID,
		Sender:    enum.SenderUser,
		Message:   text,
		At:        now,
	}
	if err := s.chatRepo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	reply := &ChatReply{VisitorID: visitorID, User: lineOf(userMsg)}
	if disclose {
		reply.VisitorRef = &visitorID
	}
	answer := s.fallbackReply
	if s.matcher != nil {
		faq, score, err := s.matcher.Match(text, s.minScore)
		if err != nil {
			s.log.WithError(err).Warn("faq lookup failed, using fallback reply")
		} else if faq != nil {
			answer = faq.Answer
			id := faq.ID
			reply.FAQID = &id
			s.log.WithFields(logrus.Fields{"faq_id": id.Hex(), "score": score}).Debug("faq matched")
		}
	}

	botMsg := &entity.ChatMessage{
		ID:        primitive.NewObjectID(),
		VisitorID: visitorID,
		Sender:    enum.SenderBot,
		Message:   answer,
		At:        now,
	}
	if err := s.chatRepo.Create(ctx, botMsg); err != nil {
		return nil, err
	}
	reply.Bot = lineOf(botMsg)
	return reply, nil
}

// resolveVisitor also reports whether the id may be returned to the caller
func (s *ChatService) resolveVisitor(ctx context.Context, input *PostMessageInput) (primitive.ObjectID, bool, error) {
	if input.VisitorID != nil {
		visitor, err := s.visitorRepo.Update(ctx, *input.VisitorID, filter.All(), nil, repository.Patch{
			Set: map[string]any{"lastInteractionAt": s.now().UTC()},
		})
		if err != nil {
			return primitive.NilObjectID, false, err
		}
		if visitor == nil {
			return primitive.NilObjectID, false, apperror.NewNotFoundError("Visitor")
		}
		return visitor.ID, true, nil
	}

	visitor, created, err := s.visitors.CreateOrTouch(ctx, &CreateVisitorInput{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Service:        input.Service,
		EnquiryDetails: strings.TrimSpace(input.Message),
		Source:         enum.SourceChatbot,
	})
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return visitor.ID, created, nil
}

// Messages returns a visitor's conversation, oldest first
func (s *ChatService) Messages(ctx context.Context, scope filter.Filter, visitorID primitive.ObjectID) ([]entity.ChatMessage, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, visitorID, scope)
	if err != nil {
		return nil, err
	}
	if visitor == nil {
		return nil, apperror.NewNotFoundError("Visitor")
	}
	return s.chatRepo.ListByVisitor(ctx, visitorID, transcriptLimit)
}
