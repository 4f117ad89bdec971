package services

import (
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/validate"
)

type MessageService struct {
	Store store.Store
}

func NewMessageService(st store.Store) *MessageService { return &MessageService{Store: st} }

// Participant is the public view of a user inside a conversation.
type Participant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// MessageView resolves sender/receiver identity for display without
// embedding the user records.
type MessageView struct {
	domain.Message
	SenderName   string `json:"senderName"`
	ReceiverName string `json:"receiverName"`
}

// ConversationView is what the inbox shows: the other participant, the
// listing under discussion and the reader's unread count in the thread.
type ConversationView struct {
	domain.Conversation
	OtherUser *Participant    `json:"otherUser"`
	Listing   *domain.Listing `json:"listing"`
	Unread    int             `json:"unreadCount"`
}

func (s *MessageService) participant(id int64) (*Participant, error) {
	u, err := s.Store.GetUser(id)
	if err != nil || u == nil {
		return nil, err
	}
	return &Participant{ID: u.ID, Name: u.Name, Avatar: u.Avatar}, nil
}

// Send validates the message, resolves (or creates) the canonical
// conversation for the pair+listing and appends the message. Nothing is
// mutated when validation fails.
func (s *MessageService) Send(senderID, receiverID, listingID int64, content string) (*MessageView, error) {
	content, ok := validate.MessageContent(content)
	if !ok {
		return nil, domain.Validationf("message content is required (max %d characters)", validate.MaxMessageLen)
	}
	if receiverID == senderID {
		return nil, domain.Validationf("cannot message yourself")
	}
	receiver, err := s.Store.GetUser(receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, domain.Validationf("receiver %d does not exist", receiverID)
	}
	listing, err := s.Store.GetListing(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.Validationf("listing %d does not exist", listingID)
	}

	conv, err := s.Store.FindOrCreateConversation(senderID, receiverID, listingID)
	if err != nil {
		return nil, err
	}
	m, err := s.Store.AppendMessage(conv.ID, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}
	sender, err := s.Store.GetUser(senderID)
	if err != nil {
		return nil, err
	}
	mv := &MessageView{Message: *m, ReceiverName: receiver.Name}
	if sender != nil {
		mv.SenderName = sender.Name
	}
	return mv, nil
}

// Thread returns a conversation's messages oldest-first. Non-existent
// conversations yield an empty result; non-participants are refused.
func (s *MessageService) Thread(actor *domain.User, conversationID int64) ([]MessageView, error) {
	conv, err := s.Store.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []MessageView{}, nil
	}
	if !conv.Involves(actor.ID) {
		return nil, domain.Forbiddenf("not a participant of conversation %d", conversationID)
	}
	msgs, err := s.Store.MessagesForConversation(conversationID)
	if err != nil {
		return nil, err
	}
	names := map[int64]string{}
	resolve := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		u, err := s.Store.GetUser(id)
		name := ""
		if err == nil && u != nil {
			name = u.Name
		}
		names[id] = name
		return name
	}
	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageView{
			Message:      m,
			SenderName:   resolve(m.SenderID),
			ReceiverName: resolve(m.ReceiverID),
		})
	}
	return out, nil
}

// Conversations lists the actor's threads, most recently active first.
func (s *MessageService) Conversations(userID int64) ([]ConversationView, error) {
	convs, err := s.Store.ConversationsForUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		other, err := s.participant(c.Other(userID))
		if err != nil {
			return nil, err
		}
		listing, err := s.Store.GetListing(c.ListingID)
		if err != nil {
			return nil, err
		}
		unread := 0
		msgs, err := s.Store.MessagesForConversation(c.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			if m.ReceiverID == userID && !m.Read {
				unread++
			}
		}
		out = append(out, ConversationView{Conversation: c, OtherUser: other, Listing: listing, Unread: unread})
	}
	return out, nil
}

// MarkRead flips unread messages addressed to the actor in the given
// conversation. Idempotent; reports whether anything changed.
func (s *MessageService) MarkRead(actor *domain.User, conversationID int64) (bool, error) {
	conv, err := s.Store.GetConversation(conversationID)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, nil
	}
	if !conv.Involves(actor.ID) {
		return false, domain.Forbiddenf("not a participant of conversation %d", conversationID)
	}
	return s.Store.MarkConversationRead(conversationID, actor.ID)
}

func (s *MessageService) UnreadCount(userID int64) (int, error) {
	return s.Store.UnreadCount(userID)
}

// DeleteConversation removes a thread and all its messages.
func (s *MessageService) DeleteConversation(actor *domain.User, conversationID int64) error {
	conv, err := s.Store.GetConversation(conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return domain.NotFoundf("conversation %d", conversationID)
	}
	if !conv.Involves(actor.ID) {
		return domain.Forbiddenf("not a participant of conversation %d", conversationID)
	}
	_, err = s.Store.DeleteConversation(conversationID)
	return err
}
