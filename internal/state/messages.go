package state

import (
	"fmt"
	"strings"
	"time"

	"cmms/internal/models"
)

// SendMessage persists and adds a new message. With no thread id the
// message starts a conversation: the gateway mints its id and that id
// becomes the thread id.
func (a *App) SendMessage(m models.Message) (models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m.Read = false
	err := a.gw.SaveMessage(&m)
	a.notify(err, "Message sent!", "Error sending message")
	if err != nil {
		return models.Message{}, err
	}
	a.messages = append(a.messages, m)
	return m, nil
}

// ReplyToMessage appends a message to the conversation containing the given
// message, keeping the conversation's subject.
func (a *App) ReplyToMessage(messageID, content, imageURL string, actor *models.User) (models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil {
		return models.Message{}, ErrNotAllowed
	}
	orig, ok := a.findMessage(messageID)
	if !ok {
		return models.Message{}, ErrNotFound
	}
	first := a.firstInThread(orig.ThreadID)

	reply := models.Message{
		Subject:   first.Subject,
		Content:   content,
		From:      actor.Name,
		To:        threadParticipants(a.messages, orig.ThreadID, actor.Name),
		ThreadID:  orig.ThreadID,
		Type:      orig.Type,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	err := a.gw.SaveMessage(&reply)
	a.notify(err, "Reply sent!", "Error sending reply")
	if err != nil {
		return models.Message{}, err
	}
	a.messages = append(a.messages, reply)
	return reply, nil
}

// ForwardMessage starts a new conversation quoting the original message.
func (a *App) ForwardMessage(messageID string, to []string, subject, content string, actor *models.User) (models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil {
		return models.Message{}, ErrNotAllowed
	}
	orig, ok := a.findMessage(messageID)
	if !ok {
		return models.Message{}, ErrNotFound
	}

	fwd := models.Message{
		Subject: subject,
		Content: fmt.Sprintf("%s\n\n--- Forwarded Message ---\nFrom: %s\nTo: %s\nSubject: %s\n\n%s",
			content, orig.From, strings.Join(orig.To, ", "), orig.Subject, orig.Content),
		From:      actor.Name,
		To:        to,
		Type:      orig.Type,
		CreatedAt: time.Now(),
	}
	err := a.gw.SaveMessage(&fwd)
	a.notify(err, "Message forwarded!", "Error forwarding message")
	if err != nil {
		return models.Message{}, err
	}
	a.messages = append(a.messages, fwd)
	return fwd, nil
}

// MarkMessageRead sets the message's read flag. The flag is shared across
// recipients, not tracked per viewer.
func (a *App) MarkMessageRead(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.messages {
		if a.messages[i].ID != id {
			continue
		}
		if a.messages[i].Read {
			return nil
		}
		m := a.messages[i]
		m.Read = true
		if err := a.gw.SaveMessage(&m); err != nil {
			a.notifier.Failure("Error updating message")
			return err
		}
		a.messages[i] = m
		return nil
	}
	return ErrNotFound
}

func (a *App) findMessage(id string) (models.Message, bool) {
	for i := range a.messages {
		if a.messages[i].ID == id {
			return a.messages[i], true
		}
	}
	return models.Message{}, false
}

// firstInThread returns the earliest message carrying the thread id; its
// subject is the conversation's subject.
func (a *App) firstInThread(threadID string) models.Message {
	var first models.Message
	for i := range a.messages {
		m := a.messages[i]
		if m.ThreadID != threadID {
			continue
		}
		if first.ID == "" || m.CreatedAt.Before(first.CreatedAt) {
			first = m
		}
	}
	return first
}

// threadParticipants collects every sender and recipient in the thread
// except the acting user, deduplicated in first-seen order.
func threadParticipants(messages []models.Message, threadID, exclude string) []string {
	seen := map[string]bool{exclude: true}
	var out []string
	for _, m := range messages {
		if m.ThreadID != threadID {
			continue
		}
		for _, name := range append([]string{m.From}, m.To...) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
