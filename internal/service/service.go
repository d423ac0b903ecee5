//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../mocks/mock_store.go -package=mocks
package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orgmessages/internal/events"
	"orgmessages/internal/models"
)

const (
	ReasonNotFound       = "Message not found."
	ReasonTitleTaken     = "Title must be unique for this organization."
	ReasonUpdateInactive = "Only active messages can be updated."
	ReasonDeleteInactive = "Only active messages can be deleted."
)

// MessageStore is the storage the service runs on. It applies no business
// rules of its own.
type MessageStore interface {
	GetByID(orgID, id uuid.UUID) (models.Message, bool)
	GetAllByOrganization(orgID uuid.UUID) []models.Message
	GetByTitle(orgID uuid.UUID, title string) (models.Message, bool)
	Create(msg models.Message) models.Message
	Update(msg models.Message) (models.Message, bool)
	Delete(orgID, id uuid.UUID) bool
}

type EventPublisher interface {
	Publish(event events.Event)
}

type MessageService struct {
	store  MessageStore
	events EventPublisher
	log    logrus.FieldLogger

	// writeMu spans the uniqueness check and the write that follows it.
	writeMu sync.Mutex
	now     func() time.Time
}

func NewMessageService(store MessageStore, publisher EventPublisher, log logrus.FieldLogger) *MessageService {
	if publisher == nil {
		publisher = events.Discard
	}
	return &MessageService{
		store:  store,
		events: publisher,
		log:    log.WithField("component", "message_service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MessageService) CreateMessage(orgID uuid.UUID, req *models.CreateMessageRequest) Result {
	if req == nil {
		return nullRequest()
	}
	if errs := validateRequest(req); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.titleTaken(orgID, req.Title, uuid.Nil) {
		s.log.WithFields(logrus.Fields{"org_id": orgID, "title": req.Title}).Debug("Rejecting duplicate title on create")
		return Conflict{Reason: ReasonTitleTaken}
	}

	now := s.now()
	stored := s.store.Create(models.Message{
		OrganizationID: orgID,
		Title:          req.Title,
		Content:        req.Content,
		CreatedAt:      now,
		UpdatedAt:      now,
		IsActive:       true,
	})
	s.log.WithFields(logrus.Fields{"org_id": orgID, "message_id": stored.ID}).Info("Message created")
	s.publish(events.MessageCreated, stored)
	return Created{Value: stored}
}

func (s *MessageService) UpdateMessage(orgID, id uuid.UUID, req *models.UpdateMessageRequest) Result {
	if req == nil {
		return nullRequest()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	msg, ok := s.store.GetByID(orgID, id)
	if !ok {
		return NotFound{Reason: ReasonNotFound}
	}
	if !msg.IsActive {
		return Conflict{Reason: ReasonUpdateInactive}
	}
	if errs := validateRequest(req); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	if s.titleTaken(orgID, req.Title, id) {
		s.log.WithFields(logrus.Fields{"org_id": orgID, "message_id": id, "title": req.Title}).Debug("Rejecting duplicate title on update")
		return Conflict{Reason: ReasonTitleTaken}
	}

	msg.Title = req.Title
	msg.Content = req.Content
	msg.UpdatedAt = s.now()
	updated, ok := s.store.Update(msg)
	if !ok {
		return NotFound{Reason: ReasonNotFound}
	}
	s.log.WithFields(logrus.Fields{"org_id": orgID, "message_id": id}).Info("Message updated")
	s.publish(events.MessageUpdated, updated)
	return Updated{}
}

// DeleteMessage removes the record outright. IsActive is never cleared, so
// the inactive branch only fires for records stored inactive by other means.
func (s *MessageService) DeleteMessage(orgID, id uuid.UUID) Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	msg, ok := s.store.GetByID(orgID, id)
	if !ok {
		return NotFound{Reason: ReasonNotFound}
	}
	if !msg.IsActive {
		return Conflict{Reason: ReasonDeleteInactive}
	}
	if !s.store.Delete(msg.OrganizationID, msg.ID) {
		return NotFound{Reason: ReasonNotFound}
	}
	s.log.WithFields(logrus.Fields{"org_id": orgID, "message_id": id}).Info("Message deleted")
	s.publish(events.MessageDeleted, msg)
	return Deleted{}
}

func (s *MessageService) GetMessage(orgID, id uuid.UUID) Result {
	msg, ok := s.store.GetByID(orgID, id)
	if !ok {
		return NotFound{Reason: ReasonNotFound}
	}
	return Success[models.Message]{Value: msg}
}

func (s *MessageService) GetAllMessages(orgID uuid.UUID) Result {
	messages := s.store.GetAllByOrganization(orgID)
	if messages == nil {
		messages = []models.Message{}
	}
	return Success[[]models.Message]{Value: messages}
}

// titleTaken reports whether an active message other than exceptID already
// uses title. The comparison is case-sensitive.
func (s *MessageService) titleTaken(orgID uuid.UUID, title string, exceptID uuid.UUID) bool {
	for _, m := range s.store.GetAllByOrganization(orgID) {
		if m.IsActive && m.Title == title && m.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *MessageService) publish(kind events.Type, msg models.Message) {
	s.events.Publish(events.Event{
		Type:           kind,
		OrganizationID: msg.OrganizationID,
		MessageID:      msg.ID,
		Title:          msg.Title,
		At:             s.now(),
	})
}
