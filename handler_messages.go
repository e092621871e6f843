package main

import (
	"net/http"

	"cmms/internal/audit"
	"cmms/internal/models"
	"cmms/internal/response"
	"cmms/internal/validation"
	"cmms/internal/views"
)

func (app *App) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	msgs := app.State.Messages()
	out := map[string]any{
		"messages": msgs,
		"unread":   views.UnreadMessages(msgs, sess.User.Name),
	}
	response.JSON(w, out)
}

func (app *App) handleConversations(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, views.Conversations(app.State.Messages()))
}

type messagePayload struct {
	Subject  string   `json:"subject"`
	Content  string   `json:"content"`
	To       []string `json:"to"`
	Type     string   `json:"type"`
	ImageURL string   `json:"image_url"`
}

func (app *App) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var p messagePayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "subject", p.Subject)
	validation.ValidateEnum(ve, "type", p.Type, validation.ValidMessageTypes)
	validation.ValidateMaxLength(ve, "content", p.Content, validation.MaxStringLength)
	if len(p.To) == 0 {
		ve.Add("to", "at least one recipient is required")
	}
	if ve.HasErrors() {
		writeErr(w, ve)
		return
	}

	sent, err := app.State.SendMessage(models.Message{
		Subject:  p.Subject,
		Content:  p.Content,
		From:     sess.User.Name,
		To:       p.To,
		Type:     p.Type,
		ImageURL: p.ImageURL,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	app.Hub.BroadcastChange("message", "create", sent.ID)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "messages", sent.ID, "Sent message "+sent.Subject)
	w.WriteHeader(201)
	response.JSON(w, sent)
}

func (app *App) handleReplyMessage(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := response.DecodeBody(r, &req); err != nil || req.Content == "" {
		response.Err(w, "Reply content is required", 400)
		return
	}

	reply, err := app.State.ReplyToMessage(id, req.Content, req.ImageURL, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	app.Hub.BroadcastChange("message", "create", reply.ID)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "messages", reply.ID, "Replied in "+reply.Subject)
	w.WriteHeader(201)
	response.JSON(w, reply)
}

func (app *App) handleForwardMessage(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		Content string   `json:"content"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if req.Subject == "" || len(req.To) == 0 {
		response.Err(w, "Subject and recipients are required", 400)
		return
	}

	fwd, err := app.State.ForwardMessage(id, req.To, req.Subject, req.Content, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	app.Hub.BroadcastChange("message", "create", fwd.ID)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "messages", fwd.ID, "Forwarded message "+fwd.Subject)
	w.WriteHeader(201)
	response.JSON(w, fwd)
}

func (app *App) handleMarkMessageRead(w http.ResponseWriter, r *http.Request, id string) {
	if err := app.State.MarkMessageRead(id); err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "read"})
}
