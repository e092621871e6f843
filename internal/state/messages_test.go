package state

import (
	"errors"
	"strings"
	"testing"

	"cmms/internal/models"
)

func TestReplyJoinsThreadAndKeepsSubject(t *testing.T) {
	app := setupState(t)

	first, err := app.SendMessage(models.Message{
		Subject: "Compressor inspection",
		Content: "Please look at unit 4",
		From:    "Alice Admin",
		To:      []string{"Carol Crew", "Bob Builder"},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	reply, err := app.ReplyToMessage(first.ID, "Will do this afternoon", "", operator())
	if err != nil {
		t.Fatalf("ReplyToMessage: %v", err)
	}
	if reply.ThreadID != first.ThreadID {
		t.Errorf("Reply left the thread: %s vs %s", reply.ThreadID, first.ThreadID)
	}
	if reply.Subject != "Compressor inspection" {
		t.Errorf("Reply changed the subject: %q", reply.Subject)
	}
	if reply.From != "Carol Crew" {
		t.Errorf("Reply sender wrong: %q", reply.From)
	}
}

func TestReplyRecipientsExcludeActor(t *testing.T) {
	app := setupState(t)

	first, _ := app.SendMessage(models.Message{
		Subject: "Compressor inspection",
		From:    "Alice Admin",
		To:      []string{"Carol Crew", "Bob Builder"},
	})
	reply, err := app.ReplyToMessage(first.ID, "On it", "", operator())
	if err != nil {
		t.Fatalf("ReplyToMessage: %v", err)
	}
	for _, name := range reply.To {
		if name == "Carol Crew" {
			t.Errorf("Reply addressed to its own sender: %v", reply.To)
		}
	}
	want := map[string]bool{"Alice Admin": false, "Bob Builder": false}
	for _, name := range reply.To {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Participant %s missing from reply recipients: %v", name, reply.To)
		}
	}
}

func TestForwardStartsNewThreadQuotingOriginal(t *testing.T) {
	app := setupState(t)

	first, _ := app.SendMessage(models.Message{
		Subject: "Compressor inspection",
		Content: "Please look at unit 4",
		From:    "Alice Admin",
		To:      []string{"Carol Crew"},
	})

	fwd, err := app.ForwardMessage(first.ID, []string{"Bob Builder"}, "FW: Compressor inspection", "See below", operator())
	if err != nil {
		t.Fatalf("ForwardMessage: %v", err)
	}
	if fwd.ThreadID == first.ThreadID {
		t.Error("Forward should start a new thread")
	}
	if !strings.Contains(fwd.Content, "--- Forwarded Message ---") {
		t.Errorf("Forward did not quote the original: %q", fwd.Content)
	}
	if !strings.Contains(fwd.Content, "Please look at unit 4") {
		t.Errorf("Original content missing from forward: %q", fwd.Content)
	}
}

func TestMarkMessageReadIdempotent(t *testing.T) {
	app := setupState(t)

	m, _ := app.SendMessage(models.Message{
		Subject: "Note",
		From:    "Alice Admin",
		To:      []string{"Bob Builder"},
	})
	if err := app.MarkMessageRead(m.ID); err != nil {
		t.Fatalf("MarkMessageRead: %v", err)
	}
	if err := app.MarkMessageRead(m.ID); err != nil {
		t.Fatalf("Second MarkMessageRead: %v", err)
	}
	if !app.Messages()[0].Read {
		t.Error("Message not marked read")
	}

	if err := app.MarkMessageRead("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
