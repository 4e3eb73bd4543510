// File: internal/handlers/page_handlers.go
package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-counselor/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template cache to avoid parsing templates on every request
var (
	chatTemplate     *template.Template
	chatTemplateErr  error
	chatTemplateOnce sync.Once
)

func loadChatTemplate() {
	chatTemplate, chatTemplateErr = template.ParseFS(templateFS, "templates/chat.html")
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// PageHandler serves the server-rendered chat page and its form posts.
type PageHandler struct {
	chat *ChatHandler
}

func NewPageHandler(chat *ChatHandler) *PageHandler {
	return &PageHandler{chat: chat}
}

// ShowChatPage renders the page; ?error= carries a message from a failed post.
func (h *PageHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	chatTemplateOnce.Do(loadChatTemplate)
	if chatTemplateErr != nil {
		h.chat.logger.Error("chat template failed to parse", "error", chatTemplateErr)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]interface{}{
		"View":  buildView(h.chat.Store.Snapshot(), h.chat.Orchestrator),
		"Error": r.URL.Query().Get("error"),
	}
	if err := chatTemplate.Execute(w, data); err != nil {
		h.chat.logger.Error("template render error", "error", err)
	}
}

func (h *PageHandler) SwitchUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	user, err := domain.ParseUserProfile(r.FormValue("user"))
	if err != nil {
		redirectHome(w, r, "Usuário desconhecido")
		return
	}
	if err := h.chat.Store.SwitchUser(user); err != nil {
		redirectHome(w, r, "Não foi possível trocar de usuário")
		return
	}
	redirectHome(w, r, "")
}

func (h *PageHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if _, err := h.chat.Store.CreateSession(h.chat.Store.Snapshot().CurrentUser); err != nil {
		redirectHome(w, r, "Não foi possível criar a conversa")
		return
	}
	redirectHome(w, r, "")
}

func (h *PageHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	h.chat.Store.SelectSession(h.chat.Store.Snapshot().CurrentUser, mux.Vars(r)["id"])
	redirectHome(w, r, "")
}

func (h *PageHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.chat.Store.DeleteSession(h.chat.Store.Snapshot().CurrentUser, mux.Vars(r)["id"])
	redirectHome(w, r, "")
}

func (h *PageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		redirectHome(w, r, "Mensagem longa demais.")
		return
	}
	if err := h.chat.Orchestrator.Submit(r.Context(), r.FormValue("text")); err != nil {
		status, _ := submitErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.chat.logger.Error("submit failed", "error", err)
		}
		redirectHome(w, r, submitErrorText(err))
		return
	}
	redirectHome(w, r, "")
}

func submitErrorText(err error) string {
	status, _ := submitErrorStatus(err)
	switch status {
	case http.StatusBadRequest:
		return "Escreva uma mensagem antes de enviar."
	case http.StatusConflict:
		return "Aguarde a resposta anterior."
	default:
		return "Não foi possível enviar a mensagem."
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request, errMsg string) {
	target := "/"
	if errMsg != "" {
		target += "?error=" + url.QueryEscape(errMsg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
