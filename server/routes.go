package server

import (
	"context"
	"net/http"

	"vidly/auth"
	"vidly/cache"
	"vidly/handlers"
	"vidly/middleware"
	"vidly/store"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

// HandlerFunc is the handler shape used throughout the handlers package
type HandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request)

// ServeHTTP calls f with the request's context, so values added by
// middleware are visible to the handler
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f(r.Context(), w, r)
}

// Access levels for a route
const (
	AuthNone  = "none"
	AuthToken = "token"
	AuthAdmin = "admin"
)

// Route describes one endpoint. RateLimited routes share the credential
// limiter.
type Route struct {
	Name        string
	Method      string
	Path        string
	AuthType    string
	RateLimited bool
}

// Deps is everything the router needs
type Deps struct {
	DB          *sqlx.DB
	Cache       *cache.ResponseCache
	Auth        *auth.Service
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	APIPrefix   string
}

// NewRouter wires stores, handlers and middleware into a mux router
func NewRouter(deps Deps) *mux.Router {
	genres := store.NewGenreStore(deps.DB)
	customers := store.NewCustomerStore(deps.DB)
	movies := store.NewMovieStore(deps.DB, genres)
	rentals := store.NewRentalStore(deps.DB, customers, movies)

	genreHandler := handlers.NewGenreHandler(genres, deps.Cache)
	customerHandler := handlers.NewCustomerHandler(customers, deps.Cache)
	movieHandler := handlers.NewMovieHandler(movies, deps.Cache)
	rentalHandler := handlers.NewRentalHandler(rentals, deps.Cache)
	authHandler := handlers.NewAuthHandler(deps.Auth)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)

	router.Handle("/health", HandlerFunc(handlers.Health)).Methods(http.MethodGet).Name("HealthCheck")

	api := router.PathPrefix(deps.APIPrefix).Subrouter()
	register := func(route Route, h HandlerFunc) {
		var handler http.Handler = h
		switch route.AuthType {
		case AuthAdmin:
			handler = middleware.RequireAuth(deps.Auth.Tokens())(middleware.RequireAdmin(handler))
		case AuthToken:
			handler = middleware.RequireAuth(deps.Auth.Tokens())(handler)
		}
		if route.RateLimited && deps.RateLimiter != nil {
			handler = deps.RateLimiter.Middleware()(handler)
		}
		api.Handle(route.Path, handler).Methods(route.Method).Name(route.Name)
	}

	// Genres
	register(Route{Name: "ListGenres", Method: "GET", Path: "/genres", AuthType: AuthNone}, genreHandler.GetGenres)
	register(Route{Name: "GetGenre", Method: "GET", Path: "/genres/{id}", AuthType: AuthNone}, genreHandler.GetGenre)
	register(Route{Name: "CreateGenre", Method: "POST", Path: "/genres", AuthType: AuthToken}, genreHandler.CreateGenre)
	register(Route{Name: "UpdateGenre", Method: "PUT", Path: "/genres/{id}", AuthType: AuthToken}, genreHandler.UpdateGenre)
	register(Route{Name: "DeleteGenre", Method: "DELETE", Path: "/genres/{id}", AuthType: AuthAdmin}, genreHandler.DeleteGenre)

	// Customers
	register(Route{Name: "ListCustomers", Method: "GET", Path: "/customers", AuthType: AuthNone}, customerHandler.GetCustomers)
	register(Route{Name: "GetCustomer", Method: "GET", Path: "/customers/{id}", AuthType: AuthNone}, customerHandler.GetCustomer)
	register(Route{Name: "CreateCustomer", Method: "POST", Path: "/customers", AuthType: AuthToken}, customerHandler.CreateCustomer)
	register(Route{Name: "UpdateCustomer", Method: "PUT", Path: "/customers/{id}", AuthType: AuthToken}, customerHandler.UpdateCustomer)
	register(Route{Name: "DeleteCustomer", Method: "DELETE", Path: "/customers/{id}", AuthType: AuthAdmin}, customerHandler.DeleteCustomer)

	// Movies
	register(Route{Name: "ListMovies", Method: "GET", Path: "/movies", AuthType: AuthNone}, movieHandler.GetMovies)
	register(Route{Name: "GetMovie", Method: "GET", Path: "/movies/{id}", AuthType: AuthNone}, movieHandler.GetMovie)
	register(Route{Name: "CreateMovie", Method: "POST", Path: "/movies", AuthType: AuthToken}, movieHandler.CreateMovie)
	register(Route{Name: "UpdateMovie", Method: "PUT", Path: "/movies/{id}", AuthType: AuthToken}, movieHandler.UpdateMovie)
	register(Route{Name: "DeleteMovie", Method: "DELETE", Path: "/movies/{id}", AuthType: AuthAdmin}, movieHandler.DeleteMovie)

	// Rentals
	register(Route{Name: "ListRentals", Method: "GET", Path: "/rentals", AuthType: AuthNone}, rentalHandler.GetRentals)
	register(Route{Name: "GetRental", Method: "GET", Path: "/rentals/{id}", AuthType: AuthNone}, rentalHandler.GetRental)
	register(Route{Name: "CreateRental", Method: "POST", Path: "/rentals", AuthType: AuthNone}, rentalHandler.CreateRental)
	register(Route{Name: "ReturnRental", Method: "POST", Path: "/returns", AuthType: AuthToken}, rentalHandler.ReturnRental)

	// Users and auth
	register(Route{Name: "Login", Method: "POST", Path: "/auth", AuthType: AuthNone, RateLimited: true}, authHandler.Login)
	register(Route{Name: "RegisterUser", Method: "POST", Path: "/users", AuthType: AuthNone, RateLimited: true}, authHandler.Register)
	register(Route{Name: "CurrentUser", Method: "GET", Path: "/users/me", AuthType: AuthToken}, authHandler.Me)

	return router
}
