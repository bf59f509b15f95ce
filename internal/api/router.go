package api

import (
	"net/http"
	"strings"

	"github.com/example/bookshop-event-driven/internal/api/middleware"
	"github.com/example/bookshop-event-driven/internal/auth"
)

func NewRouter(
	handlers *Handlers,
	authHandlers *AuthHandlers,
	categoryHandlers *CategoryHandlers,
	promoHandlers *PromoHandlers,
	jwtService *auth.JWTService,
	webDir string,
) http.Handler {
	mux := http.NewServeMux()

	optionalAuth := middleware.OptionalAuthMiddleware(jwtService)
	requireAuth := middleware.AuthMiddleware(jwtService)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(h))
	}

	// Static files (web UI)
	if webDir != "" {
		fs := http.FileServer(http.Dir(webDir))
		mux.Handle("/", fs)
	}

	// Auth
	mux.HandleFunc("/auth/register", authHandlers.Register)
	mux.HandleFunc("/auth/login", authHandlers.Login)
	mux.Handle("/auth/logout", optionalAuth(http.HandlerFunc(authHandlers.Logout)))
	mux.HandleFunc("/auth/refresh", authHandlers.Refresh)
	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))
	mux.Handle("/auth/change-password", requireAuth(http.HandlerFunc(authHandlers.ChangePassword)))

	// Books
	mux.Handle("/books", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetBooks(w, r)
		case http.MethodPost:
			requireAdmin(handlers.CreateBook).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/books/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasPrefix(path, "/books/category/") && r.Method == http.MethodGet:
			categoryHandlers.GetBooksByCategory(w, r)
		case strings.HasSuffix(path, "/stock") && r.Method == http.MethodPost:
			requireAdmin(handlers.AddStock).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetBook(w, r)
		case r.Method == http.MethodPut:
			requireAdmin(handlers.UpdateBook).ServeHTTP(w, r)
		case r.Method == http.MethodDelete:
			requireAdmin(handlers.DeleteBook).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Categories
	mux.Handle("/categories", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoryHandlers.ListCategories(w, r)
		case http.MethodPost:
			requireAdmin(categoryHandlers.CreateCategory).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/categories/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoryHandlers.GetCategory(w, r)
		case http.MethodPut:
			requireAdmin(categoryHandlers.UpdateCategory).ServeHTTP(w, r)
		case http.MethodDelete:
			requireAdmin(categoryHandlers.DeleteCategory).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Cart
	mux.Handle("/cart", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/cart/items", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/cart/items/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Checkout
	mux.Handle("/checkout", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.Checkout(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/checkout/preview", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.PreviewCheckout(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Bills
	mux.Handle("/bills", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetBills(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/bills/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelBill(w, r)
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
			requireAdmin(handlers.UpdateBillStatus).ServeHTTP(w, r)
		case strings.HasSuffix(path, "/transitions") && r.Method == http.MethodGet:
			handlers.GetBillTransitions(w, r)
		case r.Method == http.MethodGet:
			handlers.GetBill(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Method catalogs
	mux.HandleFunc("/shipping-methods", handlers.GetShippingMethods)
	mux.HandleFunc("/payment-methods", handlers.GetPaymentMethods)

	// Storefront promotion banner
	mux.HandleFunc("/promotions/current", promoHandlers.GetCurrentEvent)

	// Admin
	mux.Handle("/admin/bills", requireAdmin(handlers.GetAllBills))

	mux.Handle("/admin/promotions", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			promoHandlers.ListEvents(w, r)
		case http.MethodPost:
			promoHandlers.CreateEvent(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/admin/promotions/", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
			promoHandlers.ChangeStatus(w, r)
		case strings.HasSuffix(path, "/rules") && r.Method == http.MethodPost:
			promoHandlers.AddRule(w, r)
		case strings.Contains(path, "/rules/") && r.Method == http.MethodDelete:
			promoHandlers.RemoveRule(w, r)
		case strings.HasSuffix(path, "/targets") && r.Method == http.MethodPost:
			promoHandlers.AddTarget(w, r)
		case strings.Contains(path, "/targets/") && r.Method == http.MethodDelete:
			promoHandlers.RemoveTarget(w, r)
		case strings.HasSuffix(path, "/actions") && r.Method == http.MethodPost:
			promoHandlers.AddAction(w, r)
		case strings.Contains(path, "/actions/") && r.Method == http.MethodDelete:
			promoHandlers.RemoveAction(w, r)
		case strings.HasSuffix(path, "/images") && r.Method == http.MethodPost:
			promoHandlers.AddImage(w, r)
		case strings.HasSuffix(path, "/images") && r.Method == http.MethodDelete:
			promoHandlers.RemoveImage(w, r)
		case r.Method == http.MethodGet:
			promoHandlers.GetEvent(w, r)
		case r.Method == http.MethodPut:
			promoHandlers.UpdateEvent(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		println("[API]", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
