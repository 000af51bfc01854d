package notification

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/kasongo/elimu/core"
	"github.com/kasongo/elimu/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		FilterNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
	}

	Service struct {
		repo  Repository
		users user.Repository
		mail  core.EmailService
	}
)

// NewService returns a notification Service. mailSvc may be nil;
// when set, each notification is mirrored to the recipient's inbox.
func NewService(repo Repository, users user.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, users: users, mail: mailSvc}
}

// Notify appends an unread notification for the target user.
func (svc *Service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	n := Notification{
		ID:        uuid.NewString(),
		User:      nn.User,
		Type:      nn.Type,
		Message:   nn.Message,
		Status:    StatusUnread,
		CreatedAt: time.Now().UTC(),
	}
	n, err := svc.repo.CreateNotification(ctx, n)
	if err != nil {
		return Notification{}, err
	}

	svc.mirrorToEmail(ctx, n)
	return n, nil
}

// mirrorToEmail sends the notification message to the recipient's email address.
// Best-effort: lookup or delivery failures never fail the notification write.
func (svc *Service) mirrorToEmail(ctx context.Context, n Notification) {
	if svc.mail == nil || svc.users == nil {
		return
	}
	usr, err := svc.users.GetUserByID(ctx, n.User)
	if err != nil || usr.Email == "" {
		return
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: string(n.Type),
		BodyStr: n.Message,
	})
}

func (svc *Service) ForUser(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.FilterNotificationsByUser(ctx, userID)
}

// MarkRead flips a notification to read. Only the recipient may do so;
// anyone else gets ErrNotFound, same as a missing notification.
func (svc *Service) MarkRead(ctx context.Context, id, callerID string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.User != callerID {
		return Notification{}, ErrNotFound
	}
	return svc.repo.MarkNotificationRead(ctx, id)
}
