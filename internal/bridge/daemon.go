package bridge

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/zulandar/stationmaster/internal/config"
	"github.com/zulandar/stationmaster/internal/directory"
	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

// Daemon wires the adapter, the client router and the manager handler
// together and pumps inbound messages until its context is cancelled.
// Messages are handled on one worker goroutine per chat, so ordering is
// preserved per conversation while chats proceed independently.
type Daemon struct {
	cfg      *config.Config
	store    *session.Store
	gateway  directory.Gateway
	registry *Registry
	adapter  Adapter
	router   *Router
	managers *ManagerHandler
	out      io.Writer

	mu         sync.RWMutex
	managerSet map[int64]bool

	queuesMu sync.Mutex
	queues   map[int64]chan InboundMessage
	wg       sync.WaitGroup
}

// DaemonOpts holds parameters for creating a Daemon.
type DaemonOpts struct {
	Config   *config.Config
	Store    *session.Store
	Catalog  *menu.Catalog
	Gateway  directory.Gateway
	Registry *Registry
	Adapter  Adapter
	Out      io.Writer
}

// NewDaemon creates a Daemon and its router and manager handler.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bridge: config is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("bridge: store is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("bridge: catalog is required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("bridge: gateway is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("bridge: registry is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bridge: adapter is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	d := &Daemon{
		cfg:        opts.Config,
		store:      opts.Store,
		gateway:    opts.Gateway,
		registry:   opts.Registry,
		adapter:    opts.Adapter,
		out:        opts.Out,
		managerSet: make(map[int64]bool),
		queues:     make(map[int64]chan InboundMessage),
	}

	router, err := NewRouter(RouterOpts{
		Store:            opts.Store,
		Catalog:          opts.Catalog,
		Gateway:          opts.Gateway,
		Registry:         opts.Registry,
		Adapter:          opts.Adapter,
		MediaDir:         opts.Config.Paths.Media,
		DocumentsManager: opts.Config.Managers.Documents,
		DefaultManager:   opts.Config.Managers.Default,
	})
	if err != nil {
		return nil, err
	}
	d.router = router

	managers, err := NewManagerHandler(ManagerOpts{
		Store:     opts.Store,
		Registry:  opts.Registry,
		Adapter:   opts.Adapter,
		MediaDir:  opts.Config.Paths.Media,
		AdminID:   opts.Config.Managers.Admin,
		GuidePath: opts.Config.Paths.Guide,
		Refresh:   d.Refresh,
	})
	if err != nil {
		return nil, err
	}
	d.managers = managers

	return d, nil
}

// Run starts the daemon. It connects the adapter, loads the manager set,
// and blocks pumping inbound messages until the context is cancelled. On
// shutdown it closes the adapter and waits for in-flight handlers.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Stationmaster connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bridge: connect: %w", err)
	}

	d.reloadManagers(ctx)

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		return fmt.Errorf("bridge: listen: %w", err)
	}

	if d.cfg.Directory.RefreshCron != "" {
		go d.runRefreshScheduler(ctx)
	}

	fmt.Fprintf(d.out, "Stationmaster online\n")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Stationmaster shutting down...\n")
			if err := d.adapter.Close(); err != nil {
				log.Printf("bridge: close adapter: %v", err)
			}
			d.wg.Wait()
			fmt.Fprintf(d.out, "Stationmaster stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				fmt.Fprintf(d.out, "Stationmaster inbound channel closed\n")
				d.wg.Wait()
				return nil
			}
			d.enqueue(ctx, msg)
		}
	}
}

// Refresh reloads the session store from the directory and rebuilds the
// manager set.
func (d *Daemon) Refresh(ctx context.Context) error {
	if err := d.store.MergeRefresh(); err != nil {
		return err
	}
	d.reloadManagers(ctx)
	return nil
}

// reloadManagers rebuilds the set of chat ids treated as manager chats:
// every assigned manager in the directory plus the configured service
// accounts.
func (d *Daemon) reloadManagers(ctx context.Context) {
	set := make(map[int64]bool)
	for _, id := range d.gateway.ManagersForEnterprise(ctx, 0) {
		set[id] = true
	}
	set[d.cfg.Managers.Default] = true
	set[d.cfg.Managers.Admin] = true
	if d.cfg.Managers.Documents != 0 {
		set[d.cfg.Managers.Documents] = true
	}

	d.mu.Lock()
	d.managerSet = set
	d.mu.Unlock()
}

func (d *Daemon) isManager(chatID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.managerSet[chatID]
}

// enqueue routes the message to its chat's worker, starting one on first
// contact. Queue sends block, so a flooded chat slows only itself once
// its buffer fills.
func (d *Daemon) enqueue(ctx context.Context, msg InboundMessage) {
	d.queuesMu.Lock()
	q, ok := d.queues[msg.ChatID]
	if !ok {
		q = make(chan InboundMessage, 16)
		d.queues[msg.ChatID] = q
		d.wg.Add(1)
		go d.worker(ctx, q)
	}
	d.queuesMu.Unlock()

	select {
	case <-ctx.Done():
	case q <- msg:
	}
}

func (d *Daemon) worker(ctx context.Context, q <-chan InboundMessage) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			d.handle(ctx, msg)
		}
	}
}

func (d *Daemon) handle(ctx context.Context, msg InboundMessage) {
	var outs []Outbound
	if d.isManager(msg.ChatID) {
		outs = d.managers.Handle(ctx, msg)
	} else {
		release := d.store.Acquire(msg.ChatID)
		outs = d.router.HandleClient(ctx, msg)
		release()
	}
	d.send(ctx, outs)
}

// send dispatches the handler's outbounds in order, binding sent message
// ids for reply resolution and cleaning up forwarded media copies.
func (d *Daemon) send(ctx context.Context, outs []Outbound) {
	for _, out := range outs {
		var msgID int
		var err error
		if out.FilePath != "" {
			msgID, err = d.adapter.SendFile(ctx, out.ChatID, out.FilePath, out.Text, out.Keyboard)
		} else {
			msgID, err = d.adapter.SendText(ctx, out.ChatID, out.Text, out.Keyboard)
		}
		if out.DeleteFile && out.FilePath != "" {
			if rmErr := os.Remove(out.FilePath); rmErr != nil {
				log.Printf("bridge: remove media copy: %v", rmErr)
			}
		}
		if err != nil {
			log.Printf("bridge: send to %d: %v", out.ChatID, err)
			continue
		}
		if out.BindClient != 0 {
			d.registry.Bind(out.ChatID, msgID, out.BindClient)
		}
	}
}

// runRefreshScheduler fires the directory refresh on the configured cron
// expression.
func (d *Daemon) runRefreshScheduler(ctx context.Context) {
	next := nextCronDuration(d.cfg.Directory.RefreshCron)
	if next <= 0 {
		log.Printf("bridge: invalid refresh cron %q", d.cfg.Directory.RefreshCron)
		return
	}
	timer := time.NewTimer(next)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := d.Refresh(ctx); err != nil {
				log.Printf("bridge: scheduled refresh: %v", err)
			}
			if next := nextCronDuration(d.cfg.Directory.RefreshCron); next > 0 {
				timer.Reset(next)
			}
		}
	}
}
