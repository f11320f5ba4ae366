package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
	"github.com/joao-fontenele/coffeeshop/internal/session"
	"github.com/joao-fontenele/coffeeshop/internal/telemetry"
)

type Catalog interface {
	ListItems(ctx context.Context, limit int) ([]domain.Item, error)
}

type Users interface {
	Register(ctx context.Context, email, password, confirmation string) (domain.User, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
}

type Carts interface {
	AddToCart(ctx context.Context, email string, itemID int64) (int64, error)
	RemoveFromCart(ctx context.Context, email string, entryID int64) error
	ViewCart(ctx context.Context, email string) (domain.Cart, error)
}

type Orders interface {
	ConfirmOrder(ctx context.Context, email string) (domain.Order, error)
	CompleteOrder(ctx context.Context, id int64) (domain.Order, error)
	ListActiveOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type Sessions interface {
	Issue(ctx context.Context, email string) (string, time.Time, error)
	Resolve(ctx context.Context, token string) (domain.User, error)
	Revoke(ctx context.Context, token string) error
	Cookie(token string, expiresAt time.Time) *http.Cookie
	ClearCookie() *http.Cookie
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Catalog      Catalog
	Users        Users
	Carts        Carts
	Orders       Orders
	Sessions     Sessions
	DB           Pinger
	CatalogLimit int
	Logger       *slog.Logger
}

type Handler struct {
	catalog      Catalog
	users        Users
	carts        Carts
	orders       Orders
	sessions     Sessions
	db           Pinger
	catalogLimit int
	logger       *slog.Logger
	pages        *renderer
}

func NewHandler(deps Deps) (*Handler, error) {
	pages, err := newRenderer(deps.Logger)
	if err != nil {
		return nil, err
	}
	return &Handler{
		catalog:      deps.Catalog,
		users:        deps.Users,
		carts:        deps.Carts,
		orders:       deps.Orders,
		sessions:     deps.Sessions,
		db:           deps.DB,
		catalogLimit: deps.CatalogLimit,
		logger:       deps.Logger,
		pages:        pages,
	}, nil
}

// Register mounts every page route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	handle := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, telemetry.WithHTTPRoute(handler))
	}
	user := func(f http.HandlerFunc) http.Handler { return h.requireUser(f) }
	worker := func(f http.HandlerFunc) http.Handler { return h.requireUser(h.requireWorker(f)) }

	handle("GET /{$}", h.optionalUser(http.HandlerFunc(h.HandleIndex)))
	handle("POST /enter", http.HandlerFunc(h.HandleEnter))
	handle("GET /enter_page", h.optionalUser(http.HandlerFunc(h.HandleEnterPage)))
	handle("POST /enter_page", h.optionalUser(http.HandlerFunc(h.HandleEnterPage)))
	handle("POST /reg", http.HandlerFunc(h.HandleRegister))
	handle("GET /registration_page", h.optionalUser(http.HandlerFunc(h.HandleRegistrationPage)))
	handle("GET /logout", http.HandlerFunc(h.HandleLogout))
	handle("POST /logout", http.HandlerFunc(h.HandleLogout))

	handle("GET /lc", user(h.HandlePersonalPage))
	handle("GET /add_to_cart", user(h.HandleAddToCart))
	handle("GET /delete_from_cart", user(h.HandleDeleteFromCart))
	handle("GET /confirm_order", user(h.HandleConfirmOrder))
	handle("POST /confirm_order", user(h.HandleConfirmOrder))

	handle("GET /worker_page", worker(h.HandleWorkerPage))
	handle("GET /complete_order", worker(h.HandleCompleteOrder))
	handle("POST /complete_order", worker(h.HandleCompleteOrder))

	handle("GET /healthz", http.HandlerFunc(h.HandleHealth))
}

// MountAPI serves handler under pattern for workers only.
func (h *Handler) MountAPI(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, telemetry.WithHTTPRoute(h.requireUser(h.requireWorker(handler))))
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListItems(r.Context(), h.catalogLimit)
	if err != nil {
		h.fail(w, r, "list items", err)
		return
	}

	data := h.page(r)
	data.Items = items
	data.Error = flashError(r)
	h.pages.render(w, http.StatusOK, "index", data)
}

func (h *Handler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound),
			errors.Is(err, domain.ErrInvalidCredentials),
			errors.Is(err, domain.ErrAccountDisabled):
			h.logger.Info("login rejected", "reason", err.Error())
			redirect(w, r, "/enter_page?error=login")
		default:
			h.fail(w, r, "authenticate", err)
		}
		return
	}

	token, expiresAt, err := h.sessions.Issue(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, "issue session", err)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(token, expiresAt))
	h.logger.Info("user signed in", "email", user.Email, "worker", user.IsWorker)
	redirect(w, r, landingPage(user))
}

func (h *Handler) HandleEnterPage(w http.ResponseWriter, r *http.Request) {
	if user, ok := userFromContext(r.Context()); ok {
		redirect(w, r, landingPage(user))
		return
	}

	data := h.page(r)
	data.Error = flashError(r)
	data.Notice = flashNotice(r)
	h.pages.render(w, http.StatusOK, "enter", data)
}

func (h *Handler) HandleRegistrationPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, http.StatusOK, "registration", h.page(r))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	_, err := h.users.Register(r.Context(), email, r.PostFormValue("password"), r.PostFormValue("password2"))
	if err != nil {
		msg, ok := registrationMessage(err)
		if !ok {
			h.fail(w, r, "register", err)
			return
		}
		data := h.page(r)
		data.Email = email
		data.Error = msg
		h.pages.render(w, http.StatusUnprocessableEntity, "registration", data)
		return
	}

	redirect(w, r, "/enter_page?notice=registered")
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), session.TokenFromRequest(r)); err != nil {
		h.logger.Error("failed to revoke session", "error", err)
	}
	http.SetCookie(w, h.sessions.ClearCookie())
	redirect(w, r, "/")
}

func (h *Handler) HandlePersonalPage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	cart, err := h.carts.ViewCart(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, "view cart", err)
		return
	}

	orders, err := h.orders.ListOrdersByEmail(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, "list orders", err)
		return
	}

	data := h.page(r)
	data.Cart = cart
	data.Orders = orders
	data.Error = flashError(r)
	data.Notice = flashNotice(r)
	h.pages.render(w, http.StatusOK, "lc", data)
}

func (h *Handler) HandleWorkerPage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	cart, err := h.carts.ViewCart(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, "view cart", err)
		return
	}

	active, err := h.orders.ListActiveOrders(r.Context())
	if err != nil {
		h.fail(w, r, "list active orders", err)
		return
	}

	data := h.page(r)
	data.Cart = cart
	data.Orders = active
	data.Error = flashError(r)
	h.pages.render(w, http.StatusOK, "worker_lc", data)
}

func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	itemID, ok := queryID(r, "item_id")
	if !ok {
		redirect(w, r, "/?error=invalid_item")
		return
	}

	if _, err := h.carts.AddToCart(r.Context(), user.Email, itemID); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidItem):
			redirect(w, r, "/?error=invalid_item")
		case errors.Is(err, domain.ErrUnauthenticated):
			redirect(w, r, "/enter_page")
		default:
			h.fail(w, r, "add to cart", err)
		}
		return
	}

	redirect(w, r, "/")
}

func (h *Handler) HandleDeleteFromCart(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	// a missing or malformed id deletes nothing
	if id, ok := queryID(r, "id"); ok {
		if err := h.carts.RemoveFromCart(r.Context(), user.Email, id); err != nil {
			h.fail(w, r, "remove from cart", err)
			return
		}
	}

	redirect(w, r, "/lc")
}

// HandleConfirmOrder ignores the legacy item_ids and price parameters; the
// order is built from the stored cart.
func (h *Handler) HandleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	order, err := h.orders.ConfirmOrder(r.Context(), user.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			redirect(w, r, "/lc?error=empty_cart")
		case errors.Is(err, domain.ErrUnauthenticated):
			redirect(w, r, "/enter_page")
		default:
			h.fail(w, r, "confirm order", err)
		}
		return
	}

	h.logger.Info("order placed", "order_id", order.ID, "email", user.Email)
	redirect(w, r, "/lc?notice=ordered")
}

func (h *Handler) HandleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		redirect(w, r, "/worker_page?error=unknown_order")
		return
	}

	if _, err := h.orders.CompleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			redirect(w, r, "/worker_page?error=unknown_order")
			return
		}
		h.fail(w, r, "complete order", err)
		return
	}

	redirect(w, r, "/worker_page")
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// fail logs the cause and shows a generic error page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("request failed", "op", op, "error", err, "path", r.URL.Path)
	h.pages.render(w, http.StatusInternalServerError, "error", h.page(r))
}

func (h *Handler) page(r *http.Request) pageData {
	var data pageData
	if user, ok := userFromContext(r.Context()); ok {
		data.User = &user
	}
	return data
}

func landingPage(user domain.User) string {
	if user.IsWorker {
		return "/worker_page"
	}
	return "/lc"
}

func queryID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func registrationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "Passwords do not match", true
	case errors.Is(err, domain.ErrAccountExists):
		return "Account already exists", true
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Enter a valid email address", true
	case errors.Is(err, domain.ErrInvalidPassword):
		return "Password must be between 1 and 72 characters", true
	}
	return "", false
}

var flashErrors = map[string]string{
	"login":         "Wrong email or password",
	"invalid_item":  "That item is not on the menu",
	"empty_cart":    "Your cart is empty",
	"unknown_order": "No such order",
}

var flashNotices = map[string]string{
	"registered": "Account created, please sign in",
	"ordered":    "Order placed",
}

func flashError(r *http.Request) string {
	return flashErrors[r.URL.Query().Get("error")]
}

func flashNotice(r *http.Request) string {
	return flashNotices[r.URL.Query().Get("notice")]
}
