// Package dashboard is the terminal front-end: one auction detail screen
// plus the inbox, fed by REST fetches and the live feed. All state updates
// run on the gocui event loop, so the views need no locking.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/rs/zerolog"

	"auction-live/internal/conversation"
	"auction-live/internal/livefeed"
	"auction-live/internal/restapi"
	"auction-live/internal/view"
	"auction-live/pkg/clock"
	"auction-live/pkg/models"
)

type Dashboard struct {
	gui  *gocui.Gui
	api  *restapi.Client
	feed *livefeed.Subscriber
	log  zerolog.Logger

	auctionID int64
	userID    int64

	auction   *view.AuctionView
	inbox     *view.InboxView
	countdown string
	lastError string
}

func New(api *restapi.Client, feed *livefeed.Subscriber, auctionID, userID int64, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		api:       api,
		feed:      feed,
		log:       log,
		auctionID: auctionID,
		userID:    userID,
		auction:   view.NewAuctionView(clock.Real{}),
		inbox:     view.NewInboxView(userID, false, &conversation.Partitioner{}),
	}
}

// Run blocks until the user quits. The live connection is joined before
// the first render and torn down (leave, then close) on the way out.
func (d *Dashboard) Run(ctx context.Context) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("initializing terminal ui: %w", err)
	}
	defer g.Close()
	d.gui = g

	g.SetManagerFunc(d.layout)
	if err := d.keybindings(g); err != nil {
		return err
	}

	if err := d.feed.Start(ctx); err != nil {
		return err
	}
	defer d.feed.Stop()
	defer d.auction.Close()
	defer d.inbox.Close()

	if err := d.feed.Join(ctx, livefeed.AuctionGroup(d.auctionID)); err != nil {
		return fmt.Errorf("joining auction group: %w", err)
	}
	if err := d.feed.Join(ctx, livefeed.UserGroup(d.userID)); err != nil {
		return fmt.Errorf("joining user group: %w", err)
	}

	d.refresh(ctx)
	go d.eventLoop()
	go d.countdownLoop(ctx)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// refresh kicks off the page-load fetches. Results land on the UI loop;
// the views drop them if the screen was closed meanwhile.
func (d *Dashboard) refresh(ctx context.Context) {
	go func() {
		detail, err := d.api.AuctionDetail(ctx, d.auctionID)
		if err != nil {
			d.fail(err)
			return
		}
		bids, err := d.api.RecentBids(ctx, d.auctionID)
		if err != nil {
			d.fail(err)
			return
		}
		d.update(func() { d.auction.ApplyFetch(detail, bids) })
	}()
	go func() {
		threads, err := d.api.Conversations(ctx, d.userID)
		if err != nil {
			d.fail(err)
			return
		}
		disputes, err := d.api.Disputes(ctx, d.userID)
		if err != nil {
			d.fail(err)
			return
		}
		d.update(func() { d.inbox.Refresh(threads, disputes) })
	}()
}

func (d *Dashboard) eventLoop() {
	for ev := range d.feed.Events() {
		switch ev.Type {
		case models.EventBidPlaced:
			var bid models.BidPlaced
			if err := json.Unmarshal(ev.Data, &bid); err != nil {
				continue
			}
			d.update(func() { d.auction.HandleBidPlaced(bid) })
		case models.EventAuctionStatus:
			var status models.AuctionStatusUpdated
			if err := json.Unmarshal(ev.Data, &status); err != nil {
				continue
			}
			d.update(func() { d.auction.HandleStatusUpdate(status) })
		case models.EventMessageReceived:
			var msg models.MessageReceived
			if err := json.Unmarshal(ev.Data, &msg); err != nil {
				continue
			}
			d.update(func() { d.inbox.HandleMessage(msg) })
		}
	}
}

func (d *Dashboard) countdownLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stop := false
			d.update(func() {
				label, done := d.auction.CountdownTick()
				d.countdown = label
				stop = done
			})
			if stop {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// update schedules fn on the gocui loop and triggers a redraw.
func (d *Dashboard) update(fn func()) {
	d.gui.Update(func(*gocui.Gui) error {
		fn()
		return nil
	})
}

func (d *Dashboard) fail(err error) {
	d.log.Error().Err(err).Msg("fetch failed")
	d.update(func() { d.lastError = err.Error() })
}

func (d *Dashboard) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	mid := maxX / 2

	if v, err := g.SetView("detail", 0, 0, mid-1, 8); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "auction"
	} else {
		d.renderDetail(v)
	}

	if v, err := g.SetView("bids", 0, 9, mid-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "recent bids"
	} else {
		d.renderBids(v)
	}

	if v, err := g.SetView("inbox", mid, 0, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "inbox"
	} else {
		d.renderInbox(v)
	}

	if v, err := g.SetView("status", 0, maxY-2, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
	} else {
		v.Clear()
		if d.lastError != "" {
			fmt.Fprintf(v, "error: %s | r: refresh  q: quit", d.lastError)
		} else {
			fmt.Fprint(v, "r: refresh  q: quit")
		}
	}

	return nil
}

func (d *Dashboard) renderDetail(v *gocui.View) {
	v.Clear()
	st := d.auction.State()
	fmt.Fprintf(v, " %s (#%d)\n", st.Title, st.ID)
	fmt.Fprintf(v, " status:  %s\n", d.auction.DisplayStatus())
	fmt.Fprintf(v, " price:   %.2f (starting %.2f)\n", st.CurrentBid, st.StartingBid)
	fmt.Fprintf(v, " bids:    %d\n", st.BidCount)
	fmt.Fprintf(v, " time:    %s\n", d.countdown)
	if st.WinnerID != 0 {
		fmt.Fprintf(v, " winner:  %d at %.2f\n", st.WinnerID, st.FinalPrice)
	}
}

func (d *Dashboard) renderBids(v *gocui.View) {
	v.Clear()
	for _, b := range d.auction.History() {
		name := b.BidderName
		if name == "" {
			name = fmt.Sprintf("bidder %d", b.BidderID)
		}
		fmt.Fprintf(v, " %s  %8.2f  %s\n", b.BidTime.Format("15:04:05"), b.Amount, name)
	}
}

func (d *Dashboard) renderInbox(v *gocui.View) {
	v.Clear()
	buckets := d.inbox.Buckets()
	section := func(name string, threads []models.ConversationThread) {
		if len(threads) == 0 {
			return
		}
		fmt.Fprintf(v, " -- %s --\n", name)
		for _, t := range threads {
			marker := " "
			if t.UnreadCount > 0 {
				marker = "*"
			}
			fmt.Fprintf(v, " %s %d: %s\n", marker, t.OtherUserID, t.LastMessage)
		}
	}
	section("personal", buckets.Personal)
	section("dispute", buckets.Dispute)
	section("support", buckets.Support)
	fmt.Fprintf(v, "\n unread: %d\n", d.inbox.UnreadTotal())
}

func (d *Dashboard) keybindings(g *gocui.Gui) error {
	quit := func(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }
	if err := g.SetKeybinding("", 'q', gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	return g.SetKeybinding("", 'r', gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
		d.refresh(context.Background())
		return nil
	})
}
