package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio-forge/internal/ai"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/retry"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// Canned chat replies.
const (
	ChatGreeting    = "I'd be happy to help! What would you like to know?"
	ChatUnavailable = "I apologize, but the chat service is currently unavailable."
	ChatFailed      = "I apologize, but I encountered an error processing your message. Could you please try rephrasing your question?"
)

// ChatService answers visitor questions about one generated profile.
// A nil chatter means the chat credential is not configured.
type ChatService struct {
	chatter ai.Chatter
	logger  *slog.Logger
}

func NewChatService(chatter ai.Chatter, logger *slog.Logger) *ChatService {
	return &ChatService{chatter: chatter, logger: logger}
}

// Reply answers message given the earlier turns in history. It never
// returns an error; every failure becomes a polite canned reply.
func (s *ChatService) Reply(ctx context.Context, profile model.GeneratedProfile, history []model.ChatMessage, message string) string {
	if strings.TrimSpace(message) == "" {
		return ChatGreeting
	}
	if s.chatter == nil {
		return ChatUnavailable
	}

	turns := make([]ai.ChatTurn, 0, len(history)+2)
	turns = append(turns, ai.ChatTurn{Role: "system", Content: chatSystemPrompt(profile)})
	for _, h := range history {
		turns = append(turns, ai.ChatTurn{Role: historyRole(h.Role), Content: h.Text})
	}
	turns = append(turns, ai.ChatTurn{Role: "user", Content: message})

	// Chat is time-boxed but never retried.
	reply, err := retry.Timeout(ctx, "Chat reply", retry.StandardTimeout, func(ctx context.Context) (string, error) {
		return s.chatter.Chat(ctx, ai.ChatRequest{
			Messages:    turns,
			Temperature: chatTemperature,
			MaxTokens:   chatMaxTokens,
		})
	})
	if err != nil {
		s.logger.Error("chat failed",
			slog.String("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
		return ChatFailed
	}
	return reply
}

// chatSystemPrompt grounds the assistant in profile and nothing else.
func chatSystemPrompt(p model.GeneratedProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant representing %s.\n\n", p.Name)
	b.WriteString("Your knowledge base is STRICTLY LIMITED to:\n\n")

	b.WriteString("Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Role: %s\n", p.Title)
	fmt.Fprintf(&b, "- Bio: %s\n", p.Bio)
	fmt.Fprintf(&b, "- LinkedIn: %s\n", orDefault(p.LinkedInURL, "N/A"))
	fmt.Fprintf(&b, "- GitHub: %s\n\n", orDefault(p.GitHubURL, "N/A"))

	b.WriteString("Skills:\n")
	for _, sk := range p.Skills {
		fmt.Fprintf(&b, "- %s\n", sk)
	}

	b.WriteString("\nProjects:\n")
	for _, pr := range p.Projects {
		fmt.Fprintf(&b, "• %s\n  Description: %s\n  Technologies: %s\n",
			pr.Title, pr.Description, strings.Join(pr.Technologies, ", "))
	}

	fmt.Fprintf(&b, `
Instructions:
- Answer as if you are %[1]s's representative
- Be professional, helpful, and conversational
- Only reference information from the profile above
- If asked about something not in the profile, politely say you don't have that information
- Suggest the visitor contact %[1]s directly for detailed discussions
- Keep responses concise (2-4 sentences typically)
- Be personable but maintain professional boundaries
`, p.Name)
	return b.String()
}

// historyRole maps a client-supplied role onto the chat wire roles. Only the
// server writes the system turn; anything that is not "model" counts as the
// visitor.
func historyRole(role string) string {
	if role == "model" {
		return "assistant"
	}
	return "user"
}
