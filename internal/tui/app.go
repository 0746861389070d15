package tui

import (
	"context"
	"time"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/tui/keys"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/tui/viewmodel"
	"github.com/matheus3301/guftagu/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Page names.
const (
	pageChats         = "chats"
	pageThread        = "thread"
	pageInfo          = "details"
	pageSearch        = "search"
	pageCalls         = "calls"
	pageStatus        = "status"
	pageNotifications = "notifications"
	pageHelp          = "help"
)

const (
	headerHeight = 7
	promptHeight = 3
	// tickInterval keeps relative timestamps and flash expiry current.
	tickInterval = time.Second
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	vm       *viewmodel.ViewModel
	bus      *bus.Bus
	registry *keys.Registry
	logger   *zap.Logger
	session  string

	main        *tview.Flex
	sessionInfo *ui.SessionInfo
	menu        *ui.Menu
	logo        *ui.Logo
	crumbs      *ui.Crumbs
	flashBar    *ui.FlashBar
	prompt      *ui.Prompt
	promptOpen  bool

	chats   *views.ConversationList
	thread  *views.MessageThread
	info    *views.ConversationInfo
	search  *views.SearchView
	calls   *views.CallsView
	stories *views.StoriesView
	notes   *views.NotificationsView
	help    *views.HelpView

	components map[string]ui.Component
}

// NewApp creates the TUI over an in-process store. b must be the bus the
// store publishes on; idx may be nil to run without cross-chat search.
func NewApp(st *store.Store, b *bus.Bus, idx *index.Engine, sessionName string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := ui.DefaultTheme()

	a := &App{
		app:         tview.NewApplication(),
		theme:       theme,
		pages:       ui.NewPages(),
		vm:          viewmodel.New(st, idx),
		bus:         b,
		registry:    keys.NewRegistry(),
		logger:      logger,
		session:     sessionName,
		sessionInfo: ui.NewSessionInfo(theme),
		menu:        ui.NewMenu(theme),
		logo:        ui.NewLogo(theme),
		crumbs:      ui.NewCrumbs(theme),
		flashBar:    ui.NewFlashBar(theme),
		prompt:      ui.NewPrompt(theme),
		chats:       views.NewConversationList(theme),
		thread:      views.NewMessageThread(theme),
		info:        views.NewConversationInfo(theme),
		search:      views.NewSearchView(theme),
		calls:       views.NewCallsView(theme),
		stories:     views.NewStoriesView(theme),
		notes:       views.NewNotificationsView(theme),
		help:        views.NewHelpView(theme),
	}
	a.components = map[string]ui.Component{
		pageChats:         a.chats,
		pageThread:        a.thread,
		pageInfo:          a.info,
		pageSearch:        a.search,
		pageCalls:         a.calls,
		pageStatus:        a.stories,
		pageNotifications: a.notes,
		pageHelp:          a.help,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.goSection(model.SectionChats)
	return a
}

func (a *App) setupCallbacks() {
	a.thread.SetOnSend(func(text string) {
		if _, err := a.vm.Send(text); err != nil {
			a.vm.Flash.Err(err)
			a.refresh()
		}
	})

	a.search.SetOnQuery(func(query string) {
		a.runSearch(query)
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.execute(ParseCommand(text))
		}
	})
	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		switch mode {
		case ui.PromptFilter:
			a.vm.SetFilter(text)
			a.refresh()
		case ui.PromptFind:
			a.vm.Store.SetChatSearchQuery(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		switch a.prompt.Mode() {
		case ui.PromptFilter:
			a.vm.SetFilter("")
		case ui.PromptFind:
			a.vm.Store.SetInChatSearch(false)
		}
		a.hidePrompt()
		a.refresh()
	})

	a.pages.SetOnChange(func([]string) {
		a.app.SetFocus(a.focusFor(a.pages.Current()))
		a.refresh()
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageChats, a.chats, true, false)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageInfo, a.info, true, false)
	a.pages.AddPage(pageSearch, a.search, true, false)
	a.pages.AddPage(pageCalls, a.calls, true, false)
	a.pages.AddPage(pageStatus, a.stories, true, false)
	a.pages.AddPage(pageNotifications, a.notes, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)

	header := tview.NewFlex().
		AddItem(a.sessionInfo, 34, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 26, 0, false)

	a.main = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)
	a.main.SetBackgroundColor(a.theme.BgColor)

	a.app.SetRoot(a.main, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.promptOpen = true
	a.main.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptOpen = false
	a.main.ResizeItem(a.prompt, 0, 0)
	a.app.SetFocus(a.focusFor(a.pages.Current()))
}

// Run starts the UI and the event pump, and blocks until the UI exits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return a.app.Run()
	})
	g.Go(func() error {
		return a.vm.Pump(ctx, a.bus)
	})
	g.Go(func() error {
		return a.redrawLoop(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		a.app.Stop()
		return nil
	})

	err := g.Wait()
	a.logger.Info("tui stopped")
	return err
}

func (a *App) redrawLoop(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.vm.Changed():
		case <-a.vm.Flash.Watch():
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
		a.app.QueueUpdateDraw(a.refresh)
	}
}

// Stop shuts the UI down.
func (a *App) Stop() {
	a.app.Stop()
}
