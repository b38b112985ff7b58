package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/narahq/nara-chat/models"
)

const (
	sidebarWidth   = 28
	composerHeight = 3
)

// chatModel is the main screen: a sidebar with the conversation list, a
// viewport with the active conversation's exchanges, and a composer for the
// next question. The slices are snapshots taken from the state store; they
// are refreshed whenever the store publishes a change.
type chatModel struct {
	conversations []models.Conversation
	active        string
	messages      []models.Message

	sidebarIdx     int
	sidebarFocused bool

	viewport viewport.Model
	composer textarea.Model
	spinner  spinner.Model

	asking bool
	status string

	width  int
	height int
}

func newChatModel() chatModel {
	composer := textarea.New()
	composer.Placeholder = "Ask Nara..."
	composer.ShowLineNumbers = false
	composer.SetHeight(composerHeight)
	composer.CharLimit = 4000
	composer.Focus()

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return chatModel{
		composer: composer,
		viewport: viewport.New(80, 20),
		spinner:  s,
	}
}

func (m chatModel) current() (models.Conversation, bool) {
	if len(m.conversations) == 0 || m.sidebarIdx < 0 || m.sidebarIdx >= len(m.conversations) {
		return models.Conversation{}, false
	}
	return m.conversations[m.sidebarIdx], true
}

// lastAssistantMessage returns the newest exchange that has an assistant
// answer, used for clipboard copy and feedback hotkeys.
func (m chatModel) lastAssistantMessage() (models.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].AssistantText != "" {
			return m.messages[i], true
		}
	}
	return models.Message{}, false
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	mainWidth := width - sidebarWidth - 6
	if mainWidth < 20 {
		mainWidth = 20
	}
	viewportHeight := height - composerHeight - 8
	if viewportHeight < 5 {
		viewportHeight = 5
	}

	m.viewport.Width = mainWidth
	m.viewport.Height = viewportHeight
	m.composer.SetWidth(mainWidth)
	m.rebuildViewport()
}

// rebuildViewport re-renders the transcript of the active conversation and
// scrolls to the bottom.
func (m *chatModel) rebuildViewport() {
	var b strings.Builder
	for _, msg := range m.messages {
		b.WriteString(questionStyle.Render("You: " + msg.UserText))
		b.WriteString("\n")
		if msg.AssistantText != "" {
			b.WriteString(renderMarkdown(msg.AssistantText, m.viewport.Width))
			if msg.ResponseLiked != nil {
				if *msg.ResponseLiked {
					b.WriteString(verdictStyle.Render("(liked)"))
				} else {
					b.WriteString(verdictStyle.Render("(disliked)"))
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// syncSidebarIdx keeps the cursor on the active conversation after the list
// is replaced by a refresh.
func (m *chatModel) syncSidebarIdx() {
	if m.active != "" {
		for i, c := range m.conversations {
			if c.ID == m.active {
				m.sidebarIdx = i
				return
			}
		}
	}
	if m.sidebarIdx >= len(m.conversations) {
		m.sidebarIdx = len(m.conversations) - 1
	}
	if m.sidebarIdx < 0 {
		m.sidebarIdx = 0
	}
}

func (m chatModel) sidebarView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.conversations) == 0 {
		b.WriteString(helpStyle.Render("no conversations"))
		b.WriteString("\n")
	}

	for i, c := range m.conversations {
		cursor := "  "
		if i == m.sidebarIdx && m.sidebarFocused {
			cursor = "> "
		}
		marker := " "
		if c.ID == m.active {
			marker = "*"
		}
		line := fmt.Sprintf("%s%s %s", cursor, marker, fitText(c.Title, sidebarWidth-5))
		if i == m.sidebarIdx && m.sidebarFocused {
			line = selectedItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

func (m chatModel) mainView() string {
	header := titleStyle.Render("Nara")
	if m.asking {
		header += "  " + m.spinner.View() + " thinking..."
	}

	var parts []string
	parts = append(parts, header, m.viewport.View(), m.composer.View())

	if m.status != "" {
		parts = append(parts, m.status)
	}

	var help string
	if m.sidebarFocused {
		help = "↑/↓: move │ enter: open │ n: new │ d: delete │ r: refresh │ y: copy │ +/-: feedback │ l: sign out │ tab: compose"
	} else {
		help = "enter: send │ tab: conversations │ ctrl+c: quit"
	}
	parts = append(parts, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m chatModel) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), " ", m.mainView())
}
