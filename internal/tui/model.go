package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/session"
	"github.com/narahq/nara-chat/internal/state"
)

type screen int

const (
	screenWelcome screen = iota
	screenLogin
	screenRegister
	screenChat
)

type appModel struct {
	ctx      context.Context
	services *service.ClientServices
	state    *state.Store
	changes  <-chan state.Change
	logger   *logger.Logger

	currentScreen screen

	welcome  welcomeModel
	login    loginModel
	register registerModel
	chat     chatModel

	showError    bool
	errorOverlay errorOverlayModel
	showConfirm  bool
	confirm      confirmModel

	err error
}

func newAppModel(ctx context.Context, services *service.ClientServices, st *state.Store, log *logger.Logger) (appModel, error) {
	changes, err := st.Changes(ctx)
	if err != nil {
		return appModel{}, fmt.Errorf("subscribe to state changes: %w", err)
	}

	return appModel{
		ctx:           ctx,
		services:      services,
		state:         st,
		changes:       changes,
		logger:        log,
		currentScreen: screenWelcome,
		welcome:       newWelcomeModel(),
		login:         newLoginModel(),
		register:      newRegisterModel(),
		chat:          newChatModel(),
	}, nil
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.err = ErrUserQuit
			return m, tea.Quit
		}
		if m.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				m.showError = false
				m.errorOverlay.message = ""
			}
			return m, nil
		}
		if m.showConfirm {
			switch {
			case key.Matches(msg, keys.yes):
				return m, m.cmdConfirmDelete()
			case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
				m.services.ChatService.CancelDelete()
			}
			return m, nil
		}

	case stateChangedMsg:
		m.syncFromState(msg.change)
		return m, waitForChange(m.changes)

	case stateClosedMsg:
		return m, nil

	case signInDoneMsg:
		m.login.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.currentScreen = screenChat
		m.login = m.login.reset()
		return m, textarea.Blink

	case signUpDoneMsg:
		m.register.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		if msg.pendingConfirmation {
			m.register = m.register.reset()
			m.currentScreen = screenLogin
			m.login = m.login.reset()
			m.login.notice = "Check your inbox and confirm your email, then sign in."
			return m, textinput.Blink
		}
		m.currentScreen = screenChat
		m.register = m.register.reset()
		return m, textarea.Blink

	case signOutDoneMsg:
		// The state reset has already pushed the UI back to the welcome
		// screen; a failed remote revocation is only worth a notice.
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
		}
		m.currentScreen = screenWelcome
		return m, nil

	case askDoneMsg:
		m.chat.asking = false
		if msg.err != nil {
			m.showErrorf(humanizeAskError(msg.err))
			return m, nil
		}
		m.chat.composer.Reset()
		return m, nil

	case newChatDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, service.ErrCreateInFlight) {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
		}
		return m, nil

	case refreshDoneMsg, selectDoneMsg:
		if err := doneErr(msg); err != nil {
			m.showErrorf(humanizeServerUnavailableError(err))
		}
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
		}
		return m, nil

	case feedbackDoneMsg:
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
		}
		return m, nil

	case copiedMsg:
		m.chat.status = "Copied!"
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.chat.status = ""
		return m, nil

	case spinner.TickMsg:
		if m.chat.asking {
			var cmd tea.Cmd
			m.chat.spinner, cmd = m.chat.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.chat.resize(msg.Width, msg.Height)
		return m, nil
	}

	switch m.currentScreen {
	case screenWelcome:
		return m.updateWelcome(msg)
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	case screenChat:
		return m.updateChat(msg)
	}

	return m, nil
}

func (m appModel) View() string {
	var body string
	switch m.currentScreen {
	case screenWelcome:
		body = m.welcome.View()
	case screenLogin:
		body = m.login.View()
	case screenRegister:
		body = m.register.View()
	case screenChat:
		body = m.chat.View()
	}

	if m.showConfirm {
		body += "\n\n" + m.confirm.View()
	}
	if m.showError {
		body += "\n\n" + m.errorOverlay.View()
	}

	return appStyle.Render(body)
}

func (m *appModel) showErrorf(message string) {
	m.showError = true
	m.errorOverlay.message = message
}

// syncFromState refreshes the chat screen's snapshot after the store
// published a change. The pending-delete flag doubles as the confirm
// overlay's visibility.
func (m *appModel) syncFromState(change state.Change) {
	m.chat.conversations = m.state.Conversations()
	active, _ := m.state.Active()
	m.chat.active = active

	if active != "" {
		msgs, _ := m.state.Messages(active)
		m.chat.messages = msgs
	} else {
		m.chat.messages = nil
	}

	if id, ok := m.state.PendingDelete(); ok {
		title, _ := m.state.ConversationTitle(id)
		m.showConfirm = true
		m.confirm.title = title
	} else {
		m.showConfirm = false
	}

	m.chat.syncSidebarIdx()

	switch change.Kind {
	case state.KindMessages, state.KindFeedback, state.KindSelection, state.KindReset:
		m.chat.rebuildViewport()
	}

	if change.Kind == state.KindReset && m.currentScreen == screenChat {
		m.currentScreen = screenWelcome
	}
}

// ── Screen updates ──

func (m appModel) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.welcome.idx > 0 {
			m.welcome.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.welcome.idx < len(m.welcome.items)-1 {
			m.welcome.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		if m.welcome.idx == 0 {
			m.currentScreen = screenLogin
			m.login = m.login.reset()
		} else {
			m.currentScreen = screenRegister
			m.register = m.register.reset()
		}
		return m, textinput.Blink
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenWelcome
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.login = focusNextLogin(m.login)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.login = focusPrevLogin(m.login)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.login.submitting {
				return m, nil
			}

			email := strings.TrimSpace(m.login.inputs[0].Value())
			pass := m.login.inputs[1].Value()
			if email == "" || pass == "" {
				m.showErrorf("Email and password are required")
				return m, nil
			}

			m.login.notice = ""
			m.login.submitting = true
			return m, m.cmdSignIn(email, pass)
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenWelcome
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.register = focusNextRegister(m.register)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.register = focusPrevRegister(m.register)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.register.submitting {
				return m, nil
			}

			email := strings.TrimSpace(m.register.inputs[0].Value())
			pass := m.register.inputs[1].Value()
			repeat := m.register.inputs[2].Value()
			if email == "" || pass == "" {
				m.showErrorf("Email and password are required")
				return m, nil
			}
			if pass != repeat {
				m.showErrorf("Passwords do not match")
				return m, nil
			}

			m.register.submitting = true
			return m, m.cmdSignUp(email, pass)
		}
	}

	var cmd tea.Cmd
	m.register.inputs[m.register.focus], cmd = m.register.inputs[m.register.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.chat.sidebarFocused {
		return m.updateChatSidebar(keyMsg)
	}
	return m.updateChatComposer(keyMsg)
}

func (m appModel) updateChatSidebar(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.up):
		if m.chat.sidebarIdx > 0 {
			m.chat.sidebarIdx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.chat.sidebarIdx < len(m.chat.conversations)-1 {
			m.chat.sidebarIdx++
		}
	case key.Matches(keyMsg, keys.enter):
		conversation, ok := m.chat.current()
		if !ok {
			return m, nil
		}
		return m, m.cmdSelect(conversation.ID)
	case key.Matches(keyMsg, keys.newChat):
		return m, m.cmdNewChat()
	case key.Matches(keyMsg, keys.delete):
		conversation, ok := m.chat.current()
		if !ok {
			return m, nil
		}
		// The resulting state change raises the confirm overlay.
		if err := m.services.ChatService.RequestDelete(conversation.ID); err != nil {
			m.showErrorf(err.Error())
		}
		return m, nil
	case key.Matches(keyMsg, keys.refresh):
		return m, m.cmdRefresh()
	case key.Matches(keyMsg, keys.copy):
		answer, ok := m.chat.lastAssistantMessage()
		if !ok {
			return m, nil
		}
		return m, cmdCopyToClipboard(answer.AssistantText)
	case key.Matches(keyMsg, keys.like):
		answer, ok := m.chat.lastAssistantMessage()
		if !ok {
			return m, nil
		}
		return m, m.cmdFeedback(answer.ID, true)
	case key.Matches(keyMsg, keys.dislike):
		answer, ok := m.chat.lastAssistantMessage()
		if !ok {
			return m, nil
		}
		return m, m.cmdFeedback(answer.ID, false)
	case key.Matches(keyMsg, keys.logout):
		return m, m.cmdSignOut()
	case key.Matches(keyMsg, keys.tab), key.Matches(keyMsg, keys.esc):
		m.chat.sidebarFocused = false
		m.chat.composer.Focus()
		return m, textarea.Blink
	}

	return m, nil
}

func (m appModel) updateChatComposer(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.esc), key.Matches(keyMsg, keys.tab):
		m.chat.sidebarFocused = true
		m.chat.composer.Blur()
		return m, nil
	case key.Matches(keyMsg, keys.enter):
		if m.chat.asking {
			return m, nil
		}
		question := strings.TrimSpace(m.chat.composer.Value())
		if question == "" {
			return m, nil
		}
		m.chat.asking = true
		m.state.SetDraft(question)
		return m, tea.Batch(m.chat.spinner.Tick, m.cmdAsk(question))
	}

	before := m.chat.composer.Value()
	var cmd tea.Cmd
	m.chat.composer, cmd = m.chat.composer.Update(keyMsg)

	// Typing into a freshly created conversation names it after the input.
	if after := m.chat.composer.Value(); after != before {
		cmd = tea.Batch(cmd, m.cmdAutoRename(after))
	}
	return m, cmd
}

// ── Async commands ──

func waitForChange(ch <-chan state.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return stateClosedMsg{}
		}
		return stateChangedMsg{change: change}
	}
}

func (m appModel) cmdSignIn(email, password string) tea.Cmd {
	ctx := m.ctx
	auth := m.services.AuthService
	return func() tea.Msg {
		return signInDoneMsg{err: auth.SignIn(ctx, email, password)}
	}
}

func (m appModel) cmdSignUp(email, password string) tea.Cmd {
	ctx := m.ctx
	auth := m.services.AuthService
	chats := m.services.ChatService
	return func() tea.Msg {
		if err := auth.SignUp(ctx, email, password); err != nil {
			return signUpDoneMsg{err: err}
		}
		// No session after a successful sign-up means the provider wants
		// the email address confirmed first.
		if err := chats.RefreshConversations(ctx); errors.Is(err, session.ErrNoSession) {
			return signUpDoneMsg{pendingConfirmation: true}
		}
		return signUpDoneMsg{}
	}
}

func (m appModel) cmdSignOut() tea.Cmd {
	ctx := m.ctx
	auth := m.services.AuthService
	return func() tea.Msg {
		return signOutDoneMsg{err: auth.SignOut(ctx)}
	}
}

func (m appModel) cmdAsk(question string) tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return askDoneMsg{err: chats.Ask(ctx, question)}
	}
}

// cmdAutoRename runs the title auto-rename for the active conversation.
// Failures are logged, never surfaced: this fires on keystrokes, and the
// next one tries again while the placeholder title survives.
func (m appModel) cmdAutoRename(input string) tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	log := m.logger
	return func() tea.Msg {
		if err := chats.AutoRename(ctx, input); err != nil {
			log.Warn().Err(err).Msg("auto-rename failed")
		}
		return nil
	}
}

func (m appModel) cmdNewChat() tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return newChatDoneMsg{err: chats.NewChat(ctx)}
	}
}

func (m appModel) cmdSelect(id string) tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return selectDoneMsg{err: chats.SelectConversation(ctx, id)}
	}
}

func (m appModel) cmdRefresh() tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return refreshDoneMsg{err: chats.RefreshConversations(ctx)}
	}
}

func (m appModel) cmdConfirmDelete() tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return deleteDoneMsg{err: chats.ConfirmDelete(ctx)}
	}
}

func (m appModel) cmdFeedback(messageID string, liked bool) tea.Cmd {
	ctx := m.ctx
	chats := m.services.ChatService
	return func() tea.Msg {
		return feedbackDoneMsg{err: chats.SubmitFeedback(ctx, messageID, liked)}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return refreshDoneMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func humanizeAskError(err error) string {
	if errors.Is(err, service.ErrEmptyQuestion) {
		return "Type a question first"
	}
	return humanizeServerUnavailableError(err)
}

func doneErr(msg tea.Msg) error {
	switch msg := msg.(type) {
	case refreshDoneMsg:
		return msg.err
	case selectDoneMsg:
		return msg.err
	}
	return nil
}
