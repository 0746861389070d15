package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/story"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// progressWidth is the width of the story progress bar in cells.
const progressWidth = 30

// StoriesView lists story groups. When the viewer is open the selected
// story is shown with its progress bar beside the list.
type StoriesView struct {
	*tview.Flex
	theme  *ui.Theme
	list   *tview.Table
	viewer *tview.TextView
	groups []story.Group
	now    func() time.Time
}

// NewStoriesView creates the status page.
func NewStoriesView(theme *ui.Theme) *StoriesView {
	list := newTable(theme, " Status ")
	viewer := newTextView(theme, " Viewer ")
	viewer.SetTextAlign(tview.AlignCenter)

	flex := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(viewer, 0, 0, false)

	return &StoriesView{
		Flex:   flex,
		theme:  theme,
		list:   list,
		viewer: viewer,
		now:    time.Now,
	}
}

// Name implements Component.
func (sv *StoriesView) Name() string { return "Status" }

// Hints implements Component.
func (sv *StoriesView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "View"},
		{Key: "n", Description: "Next"},
		{Key: "b", Description: "Previous"},
		{Key: "c", Description: "Close"},
	}
}

// Update redraws the groups and the viewer.
func (sv *StoriesView) Update(groups []story.Group, viewer store.StoryView, open bool) {
	sv.groups = groups
	sv.list.Clear()
	headerCells(sv.list, sv.theme, []string{"  ", " NAME", " UPDATES", " LATEST"}, []int{0, 2, 0, 1})

	now := sv.now()
	for i, g := range groups {
		row := i + 1
		ring, ringColor := "◉", sv.theme.UnreadColor
		if g.AllViewed {
			ring, ringColor = "○", sv.theme.DimColor
		}
		latest := ""
		if n := len(g.Stories); n > 0 {
			latest = stamp(g.Stories[n-1].PostedAt, now)
		}
		sv.list.SetCell(row, 0, tview.NewTableCell(" "+ring).SetTextColor(ringColor))
		sv.list.SetCell(row, 1, tview.NewTableCell(" "+oneLine(g.UserName)).SetExpansion(2).SetTextColor(sv.theme.FgColor))
		sv.list.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf(" %d", len(g.Stories))).SetTextColor(sv.theme.CounterColor))
		sv.list.SetCell(row, 3, tview.NewTableCell(" "+latest).SetExpansion(1).SetTextColor(sv.theme.DimColor))
	}

	keepCursor(sv.list, len(groups))

	sv.viewer.Clear()
	if open {
		sv.ResizeItem(sv.viewer, 0, 1)
		sv.viewer.SetTitle(fmt.Sprintf(" %s %d/%d ", escape(viewer.Story.UserName), viewer.Index+1, viewer.Count))
		_, _ = fmt.Fprint(sv.viewer, sv.RenderViewer(viewer))
	} else {
		sv.ResizeItem(sv.viewer, 0, 0)
	}
}

// RenderViewer returns the tagged text of the open story.
func (sv *StoriesView) RenderViewer(v store.StoryView) string {
	filled := v.Progress * progressWidth / 100
	filled = max(0, min(progressWidth, filled))
	bar := fmt.Sprintf("[%s]%s[%s]%s[-]",
		ui.Tag(sv.theme.TitleColor), strings.Repeat("━", filled),
		ui.Tag(sv.theme.DimColor), strings.Repeat("━", progressWidth-filled))

	var b strings.Builder
	b.WriteString(bar + "\n\n")
	fmt.Fprintf(&b, "[%s]%s[-]\n\n", ui.Tag(sv.theme.DimColor), model.Ago(v.Story.PostedAt, sv.now()))
	if v.Story.Caption != "" {
		fmt.Fprintf(&b, "[::b]%s[-:-:-]\n\n", clean(v.Story.Caption))
	}
	fmt.Fprintf(&b, "[%s]%s[-]\n", ui.Tag(sv.theme.DimColor), clean(v.Story.MediaURL))
	return b.String()
}

// SelectedAuthor returns the user id of the group under the cursor.
func (sv *StoriesView) SelectedAuthor() string {
	if i := selectedIndex(sv.list, len(sv.groups)); i >= 0 {
		return sv.groups[i].UserID
	}
	return ""
}

// List returns the group table (for focus management).
func (sv *StoriesView) List() *tview.Table {
	return sv.list
}
