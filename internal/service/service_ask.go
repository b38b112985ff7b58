package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/store"
	"github.com/narahq/nara-chat/models"
)

// naraSystemPrompt frames the assistant. Answers are grounded in Sanskrit
// sources, adapted to the asker's background, and end with three follow-up
// questions.
const naraSystemPrompt = `You are Nara, a chatbot using the eternal wisdom of sanatana dharma and direct translations of Sanskrit texts to answer queries.

This application brings Hinduism to everyone in a digestible and personalized way, serving all audiences from the most devout follower to the curious skeptic. Adapt your communication style and depth to meet users wherever they are in their understanding.

Every answer must be rooted in Sanskrit texts and Devanagari analysis. Identify the most relevant texts for the question, present the original Devanagari, provide a direct literal English translation from your first-principles understanding of Sanskrit grammar and roots, and then contextualize its relevance. Analyze Sanskrit terms etymologically and reference multiple verses when they illuminate different aspects of the topic. Recognize and respect the different schools of thought within Hinduism and present multiple valid interpretations where relevant.

Whenever you share a Sanskrit verse: first state the source (text name, chapter, verse number), present the original Devanagari, give a direct literal translation, then explain its relevance.

Your responses must be natural, conversational, and flowing. Never use numbered structural sections; weave your knowledge organically into a cohesive narrative. Use markdown headers where appropriate and leave breathing room between paragraphs.

At the end of every response, recommend 3 relevant next questions that naturally evolve the conversation, phrased as genuine curiosity. Always maintain respect for the sacred nature of the texts while staying clear and accessible.`

// askTemperature and askMaxTokens match the upstream completion settings.
const (
	askTemperature = 0.7
	askMaxTokens   = 5000
)

// ChatCompleter is the slice of the OpenAI client the ask service needs.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type askService struct {
	completer     ChatCompleter
	model         string
	conversations store.ConversationRepository
	messages      store.MessageRepository
	logger        *logger.Logger
}

// NewAskService builds an [AskService] answering through the OpenAI chat
// completion API configured in cfg.
func NewAskService(cfg config.ServerApp, conversations store.ConversationRepository, messages store.MessageRepository, log *logger.Logger) AskService {
	return &askService{
		completer:     openai.NewClient(cfg.OpenAIKey),
		model:         cfg.OpenAIModel,
		conversations: conversations,
		messages:      messages,
		logger:        log,
	}
}

// NewAskServiceWithCompleter is like [NewAskService] with an explicit
// completion backend.
func NewAskServiceWithCompleter(completer ChatCompleter, model string, conversations store.ConversationRepository, messages store.MessageRepository, log *logger.Logger) AskService {
	return &askService{
		completer:     completer,
		model:         model,
		conversations: conversations,
		messages:      messages,
		logger:        log,
	}
}

func (s *askService) Ask(ctx context.Context, userID int64, question, conversationID string) (models.AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.AskResponse{}, ErrQuestionRequired
	}

	conversation, err := s.resolveConversation(ctx, userID, question, conversationID)
	if err != nil {
		return models.AskResponse{}, err
	}

	history, err := s.messages.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("load history: %w", err)
	}

	answer, err := s.complete(ctx, question, history)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("conversation_id", conversation.ID).Msg("completion failed")
		return models.AskResponse{}, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
	}

	if _, err = s.messages.Append(ctx, conversation.ID, question, answer); err != nil {
		return models.AskResponse{}, fmt.Errorf("store exchange: %w", err)
	}
	if err = s.conversations.Touch(ctx, userID, conversation.ID); err != nil {
		// The exchange is stored; a failed touch only affects ordering.
		logger.FromContext(ctx).Warn().Err(err).Str("conversation_id", conversation.ID).Msg("touch failed")
	}

	return models.AskResponse{Response: answer, History: history}, nil
}

// resolveConversation finds the target conversation or, when no id is given
// or the id is stale, creates one titled with the question.
func (s *askService) resolveConversation(ctx context.Context, userID int64, question, conversationID string) (models.Conversation, error) {
	if conversationID != "" {
		conversation, err := s.conversations.Get(ctx, userID, conversationID)
		if err == nil {
			return conversation, nil
		}
		if !errors.Is(err, store.ErrConversationNotFound) {
			return models.Conversation{}, fmt.Errorf("resolve conversation: %w", err)
		}
	}

	conversation, err := s.conversations.Create(ctx, userID, question)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// complete runs the chat completion with the prior exchanges replayed as
// alternating user/assistant turns.
func (s *askService) complete(ctx context.Context, question string, history []models.Message) (string, error) {
	chat := make([]openai.ChatCompletionMessage, 0, 2*len(history)+2)
	chat = append(chat, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: naraSystemPrompt,
	})
	for _, exchange := range history {
		chat = append(chat,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: exchange.UserText},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: exchange.AssistantText},
		)
	}
	chat = append(chat, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    chat,
		Temperature: askTemperature,
		MaxTokens:   askMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return cleanResponse(resp.Choices[0].Message.Content), nil
}

// cleanResponse normalises the model output: triple asterisks become bold,
// trailing whitespace goes, and runs of blank lines collapse so paragraphs
// are separated by exactly one.
func cleanResponse(text string) string {
	text = strings.ReplaceAll(text, "***", "**")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	prevEmpty := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !prevEmpty && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			prevEmpty = true
			continue
		}
		cleaned = append(cleaned, line)
		prevEmpty = false
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
