package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
)

const chatMaxTokens = 2048

// chatContextWindow is how many recent messages accompany a chat request.
// The full log still lives on the session.
const chatContextWindow = 20

const chatRole = `You are the writing assistant inside a plain-language text editor. ` +
	`The user's current document is included below between <document> tags. ` +
	`Answer questions about the document, explain suggested edits, and help the user write plainly. ` +
	`Keep answers short and concrete.`

// Chat returns the session's chat log.
func (s *Service) Chat(ctx context.Context, id uuid.UUID) ([]models.ChatMessage, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]models.ChatMessage(nil), st.sess.Chat...), nil
}

// SendChat appends the user message, asks the model for a reply with the
// current document as context, and appends the assistant message. If the
// upstream call fails, the user message stays in the log and the error is
// returned. Returns the full updated log.
func (s *Service) SendChat(ctx context.Context, id uuid.UUID, text string) ([]models.ChatMessage, error) {
	if err := validateChatMessage(text); err != nil {
		return nil, err
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.sess.Chat = append(st.sess.Chat, models.ChatMessage{Role: models.RoleUser, Content: text})
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueChat(st.sess)

	system := fmt.Sprintf("%s\n\n<document>\n%s\n</document>", chatRole, st.sess.Content)
	messages := chatWindow(st.sess.Chat)
	st.mu.Unlock()

	provider, err := s.registry.Route(s.model)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Complete(ctx, &domainllm.CompletionRequest{
		Model:     s.model,
		System:    system,
		Messages:  messages,
		MaxTokens: chatMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sess.Chat = append(st.sess.Chat, models.ChatMessage{Role: models.RoleAssistant, Content: resp.Text})
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueChat(st.sess)

	return append([]models.ChatMessage(nil), st.sess.Chat...), nil
}

// chatWindow maps the most recent messages onto provider messages.
func chatWindow(chat []models.ChatMessage) []domainllm.Message {
	if len(chat) > chatContextWindow {
		chat = chat[len(chat)-chatContextWindow:]
	}
	out := make([]domainllm.Message, len(chat))
	for i, m := range chat {
		out[i] = domainllm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
