// Package app composes and runs the storefront HTTP service.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/logging"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"github.com/louisbranch/storefront/internal/services/storefront/api"
	"github.com/louisbranch/storefront/internal/services/storefront/cart"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/checkout"
	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/notify"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/payment"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/postal"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/whatsapp"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/reviews"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
	"github.com/louisbranch/storefront/internal/services/storefront/storage/memory"
	storesqlite "github.com/louisbranch/storefront/internal/services/storefront/storage/sqlite"
	"github.com/louisbranch/storefront/internal/services/storefront/wishlist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server hosts the storefront HTTP API.
type Server struct {
	cfg        Config
	logger     *zap.Logger
	listener   net.Listener
	httpServer *http.Server
	carts      *cart.Sessions
	closers    []func() error
}

// OpenStore opens the collection store at path, or an in-memory store for
// MemoryDBPath. The returned close func is never nil.
func OpenStore(path string) (storage.CollectionStore, func() error, error) {
	path = strings.TrimSpace(path)
	if path == MemoryDBPath {
		return memory.New(), func() error { return nil }, nil
	}
	store, err := storesqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storefront sqlite store: %w", err)
	}
	return store, store.Close, nil
}

// New wires every storefront component and binds the listener.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	cfg = cfg.withDefaults()
	logger = logging.OrNop(logger)
	s := &Server{cfg: cfg, logger: logger}

	handler, err := s.compose()
	if err != nil {
		s.close()
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("listen on http addr %s: %w", cfg.HTTPAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return s, nil
}

func (s *Server) compose() (http.Handler, error) {
	cfg := s.cfg
	store, closeStore, err := OpenStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, closeStore)

	cat, err := catalog.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	bundle := i18ncatalog.Default()

	var sender notify.Sender = notify.NewLogSender(s.logger)
	if strings.TrimSpace(cfg.AMQPURL) != "" {
		amqpSender, err := notify.DialAMQP(cfg.AMQPURL, cfg.NotifyExchange)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, amqpSender.Close)
		sender = amqpSender
	}

	secret := cfg.SessionSecret
	if strings.TrimSpace(secret) == "" {
		secret = rand.Text()
		s.logger.Warn("session secret not configured, sessions will not survive restarts")
	}
	sessions, err := api.NewSessions(secret, api.DefaultSessionTTL, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.AdminToken) == "" {
		s.logger.Info("admin token not configured, admin routes disabled")
	}

	opts := records.Options{Logger: s.logger}
	s.carts = cart.NewSessions()
	calc := shipping.NewCalculator(cat)
	couponSvc := coupons.NewService(store, opts)
	orderSvc := orders.NewService(store, opts)

	return api.New(api.Deps{
		Catalog:   cat,
		Carts:     s.carts,
		Shipping:  calc,
		Coupons:   couponSvc,
		Orders:    orderSvc,
		Reviews:   reviews.NewService(store, opts),
		Wishlists: wishlist.NewService(store, opts),
		Checkout: checkout.NewService(checkout.Deps{
			Sessions: s.carts,
			Shipping: calc,
			Coupons:  couponSvc,
			Orders:   orderSvc,
			Payments: payment.NewMock(cfg.PaymentRedirectURL),
			Notifier: notify.NewNotifier(sender, bundle),
			Logger:   s.logger,
		}),
		Postal:     postal.NewClient(cfg.PostalAPIURL, nil),
		Contact:    whatsapp.NewBuilder(bundle, cfg.ShopPhone),
		Bundle:     bundle,
		Sessions:   sessions,
		AdminToken: cfg.AdminToken,
		Logger:     s.logger,
	})
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a storefront server until ctx ends.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	server, err := New(cfg, logger)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve blocks until ctx ends or the HTTP server fails, then shuts down
// gracefully and releases the store.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.close()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("storefront listening", zap.String("addr", s.Addr()))
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
		return nil
	})
	group.Go(func() error {
		s.pruneCarts(groupCtx)
		return nil
	})
	return group.Wait()
}

func (s *Server) pruneCarts(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CartPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := s.carts.Prune(s.cfg.CartTTL); dropped > 0 {
				s.logger.Debug("pruned idle carts", zap.Int("dropped", dropped))
			}
		}
	}
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close resource", zap.Error(err))
		}
	}
	s.closers = nil
}
