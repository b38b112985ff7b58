package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/session"
	"github.com/narahq/nara-chat/models"
)

type httpBackendAdapter struct {
	client   *resty.Client
	sessions *session.Manager

	logger *logger.Logger
}

// NewHTTPBackendAdapter constructs an HTTP/REST implementation of
// [BackendAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout. Every call obtains its bearer token
// from sessions just before the request is issued.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPBackendAdapter(adapterCfg config.ClientAdapter, sessions *session.Manager, log *logger.Logger) (BackendAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpBackendAdapter{client: client, sessions: sessions, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Conversations implements [BackendAdapter].
// It GETs the ordered conversation list from GET /api/conversations.
func (h *httpBackendAdapter) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := h.execute(ctx, http.MethodGet, "/api/conversations", nil, &conversations); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return conversations, nil
}

// CreateConversation implements [BackendAdapter]. It POSTs the optional seed
// question to POST /api/createnewconversation and returns the new identifier.
func (h *httpBackendAdapter) CreateConversation(ctx context.Context, question string) (models.CreateConversationResponse, error) {
	var created models.CreateConversationResponse

	body := models.CreateConversationRequest{Question: question}
	if err := h.execute(ctx, http.MethodPost, "/api/createnewconversation", body, &created); err != nil {
		return models.CreateConversationResponse{}, fmt.Errorf("create conversation: %w", err)
	}

	return created, nil
}

// RenameConversation implements [BackendAdapter].
// It PUTs the new title to PUT /api/conversations/{id}/title.
func (h *httpBackendAdapter) RenameConversation(ctx context.Context, id, title string) error {
	path := fmt.Sprintf("/api/conversations/%s/title", url.PathEscape(id))

	body := models.RenameConversationRequest{Title: title}
	if err := h.execute(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}

	return nil
}

// DeleteConversation implements [BackendAdapter].
// It sends DELETE /api/conversations/{id}.
func (h *httpBackendAdapter) DeleteConversation(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/conversations/%s", url.PathEscape(id))

	if err := h.execute(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	return nil
}

// Messages implements [BackendAdapter]. It GETs the server-ordered exchange
// history from GET /api/conversations/{id}/messages.
func (h *httpBackendAdapter) Messages(ctx context.Context, id string) ([]models.Message, error) {
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(id))

	var messages []models.Message
	if err := h.execute(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

// Ask implements [BackendAdapter]. It POSTs the question to POST /api/ask.
func (h *httpBackendAdapter) Ask(ctx context.Context, question, conversationID string) (models.AskResponse, error) {
	var answer models.AskResponse

	body := models.AskRequest{Question: question, ConversationID: conversationID}
	if err := h.execute(ctx, http.MethodPost, "/api/ask", body, &answer); err != nil {
		return models.AskResponse{}, fmt.Errorf("ask: %w", err)
	}

	return answer, nil
}

// SendFeedback implements [BackendAdapter].
// It POSTs the verdict to POST /api/messages/{id}/feedback.
func (h *httpBackendAdapter) SendFeedback(ctx context.Context, messageID string, liked bool) error {
	path := fmt.Sprintf("/api/messages/%s/feedback", url.PathEscape(messageID))

	body := models.FeedbackRequest{ResponseLiked: liked}
	if err := h.execute(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("send feedback: %w", err)
	}

	return nil
}

// execute performs one logical backend call.
//
// It obtains a session from the lifecycle manager (propagating its errors
// unchanged), issues the request with the bearer token attached, and — on an
// unauthorized response — performs exactly one recovery attempt: a forced
// refresh followed by a single identical reissue with the new token. A failed
// forced refresh or a second unauthorized response surfaces [ErrUnauthorized].
// The forced refresh updates the shared session for all subsequent callers,
// not just this one.
func (h *httpBackendAdapter) execute(ctx context.Context, method, path string, body, out any) error {
	sess, err := h.sessions.EnsureValid(ctx)
	if err != nil {
		return err
	}

	resp, err := h.issue(ctx, method, path, body, out, sess.AccessToken)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		h.logger.Debug().Str("path", path).Msg("unauthorized response, forcing session refresh")

		sess, err = h.sessions.ForceRefresh(ctx)
		if err != nil {
			return fmt.Errorf("%w: forced refresh: %v", ErrUnauthorized, err)
		}

		resp, err = h.issue(ctx, method, path, body, out, sess.AccessToken)
		if err != nil {
			return fmt.Errorf("%s %s (retry): %w", method, path, err)
		}
	}

	return mapHTTPError(resp)
}

func (h *httpBackendAdapter) issue(ctx context.Context, method, path string, body, out any, token string) (*resty.Response, error) {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token)

	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	return req.Execute(method, path)
}
