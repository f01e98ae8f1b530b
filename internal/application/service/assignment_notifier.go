package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/email"
)

// AssignmentMailer sends the assignment notice email
type AssignmentMailer interface {
	SendAssignmentNotice(toEmail string, notice email.AssignmentNotice) error
}

// AssignmentNotifier emails executives when a lead is assigned to them.
// Only resolved assignees with an active account are notified.
type AssignmentNotifier struct {
	userRepo repository.UserRepository
	mailer   AssignmentMailer
	log      *logrus.Logger
}

// NewAssignmentNotifier creates a new assignment notifier
func NewAssignmentNotifier(userRepo repository.UserRepository, mailer AssignmentMailer, log *logrus.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{userRepo: userRepo, mailer: mailer, log: log}
}

// Handle is the event bus subscriber; mail is sent off the request path
func (n *AssignmentNotifier) Handle(ctx context.Context, ev *AssignmentChanged) {
	go n.notify(context.WithoutCancel(ctx), ev)
}

func (n *AssignmentNotifier) notify(ctx context.Context, ev *AssignmentChanged) {
	id, ok := ev.Assignee.ID()
	if !ok {
		return
	}
	user, err := n.userRepo.GetByID(ctx, id)
	if err != nil {
		n.log.WithError(err).WithField("user_id", id.Hex()).Error("loading assignee for notification")
		return
	}
	if user == nil || !user.Active || user.Email == "" {
		return
	}

	err = n.mailer.SendAssignmentNotice(user.Email, email.AssignmentNotice{
		AssigneeName: user.Name,
		VisitorName:  ev.VisitorName,
		Service:      ev.Service,
		Role:         string(ev.Role),
		AssignedBy:   ev.Actor.Name,
	})
	switch {
	case errors.Is(err, email.ErrDisabled):
		n.log.WithField("to", user.Email).Debug("assignment notice skipped, email disabled")
	case err != nil:
		n.log.WithError(err).WithField("to", user.Email).Warn("failed to send assignment notice")
	}
}
