package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/api/scheduler"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	api.SetupGoGuardian(a.Config.JWTSecret)

	r := mux.NewRouter()

	auth := Auth{
		CodeDB: databases.NewAccessCodeDatabase(a.dbHelper),
		BootDB: databases.NewBootstrapEventDatabase(a.dbHelper),
		Config: a.Config,
	}
	code := AccessCode{DB: databases.NewAccessCodeDatabase(a.dbHelper)}
	vr := Verification{
		VRDB: databases.NewVerificationRequestDatabase(a.dbHelper),
		UDB:  databases.NewUserDatabase(a.dbHelper),
	}
	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	p := Post{PDB: databases.NewPostDatabase(a.dbHelper), RDB: databases.NewReportDatabase(a.dbHelper)}
	appt := Appointment{DB: databases.NewAppointmentDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	prom := api.NewPrometheusMiddleware()
	r.Use(prom.Instrument)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/login", api.RateLimit(http.HandlerFunc(auth.LoginHandler))).Methods("POST")
	apiCreate.Handle("/auth/bootstrap", api.RateLimit(http.HandlerFunc(auth.BootstrapHandler))).Methods("POST")

	apiCreate.Handle("/access-codes/validate", api.RateLimit(http.HandlerFunc(code.ValidateCodeHandler))).Methods("POST")
	apiCreate.Handle("/access-codes/cleanup", api.TimeoutMiddleware(30*time.Second)(api.Middleware(http.HandlerFunc(code.CleanupCodesHandler)))).Methods("POST")
	apiCreate.Handle("/access-codes/{code_id}/consume", api.Middleware(http.HandlerFunc(code.ConsumeCodeHandler))).Methods("POST")
	apiCreate.Handle("/access-codes", api.Middleware(http.HandlerFunc(code.GenerateCodeHandler))).Methods("POST")
	apiCreate.Handle("/access-codes", api.Middleware(http.HandlerFunc(code.ListCodesHandler))).Methods("GET")
	apiCreate.Handle("/access-codes/{code_id}", api.Middleware(http.HandlerFunc(code.CodeByIDHandler))).Methods("GET")
	apiCreate.Handle("/access-codes/{code_id}", api.Middleware(http.HandlerFunc(code.DeleteCodeHandler))).Methods("DELETE")

	apiCreate.Handle("/verification-requests", api.Middleware(http.HandlerFunc(vr.ListRequestsHandler))).Methods("GET")
	apiCreate.Handle("/verification-requests/{request_id}", api.Middleware(http.HandlerFunc(vr.RequestByIDHandler))).Methods("GET")
	apiCreate.Handle("/verification-requests/{request_id}/status", api.Middleware(http.HandlerFunc(vr.SetStatusHandler))).Methods("PUT")
	apiCreate.Handle("/verification-requests/{request_id}", api.Middleware(http.HandlerFunc(vr.DeleteRequestHandler))).Methods("DELETE")

	apiCreate.Handle("/users/watch", api.Middleware(http.HandlerFunc(u.WatchUsersHandler))).Methods("GET")
	apiCreate.Handle("/users", api.Middleware(http.HandlerFunc(u.ListUsersHandler))).Methods("GET")
	apiCreate.Handle("/users/{user_id}", api.Middleware(http.HandlerFunc(u.UserByIDHandler))).Methods("GET")
	apiCreate.Handle("/users/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserFieldHandler))).Methods("PATCH")
	apiCreate.Handle("/users/{user_id}", api.Middleware(http.HandlerFunc(u.DeleteUserHandler))).Methods("DELETE")

	apiCreate.Handle("/posts/reported", api.TimeoutMiddleware(30*time.Second)(api.Middleware(http.HandlerFunc(p.ReportedPostsHandler)))).Methods("GET")
	apiCreate.Handle("/posts", api.Middleware(http.HandlerFunc(p.ListPostsHandler))).Methods("GET")
	apiCreate.Handle("/posts/{post_id}", api.Middleware(http.HandlerFunc(p.PostByIDHandler))).Methods("GET")
	apiCreate.Handle("/posts/{post_id}/visibility", api.Middleware(http.HandlerFunc(p.SetPostVisibilityHandler))).Methods("PATCH")
	apiCreate.Handle("/posts/{post_id}", api.Middleware(http.HandlerFunc(p.DeletePostHandler))).Methods("DELETE")
	apiCreate.Handle("/posts/{post_id}/reports", api.Middleware(http.HandlerFunc(p.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/reports/{report_id}/dismiss", api.Middleware(http.HandlerFunc(p.DismissReportHandler))).Methods("PATCH")

	apiCreate.Handle("/appointments", api.Middleware(http.HandlerFunc(appt.ListAppointmentsHandler))).Methods("GET")
	apiCreate.Handle("/appointments/{appointment_id}", api.Middleware(http.HandlerFunc(appt.AppointmentByIDHandler))).Methods("GET")
	apiCreate.Handle("/appointments/{appointment_id}/status", api.Middleware(http.HandlerFunc(appt.SetAppointmentStatusHandler))).Methods("PATCH")
	apiCreate.Handle("/appointments/{appointment_id}", api.Middleware(http.HandlerFunc(appt.DeleteAppointmentHandler))).Methods("DELETE")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("admin-api has connected to the database")

	// start the periodic access code cleanup
	a.scheduler = scheduler.NewScheduler(databases.NewAccessCodeDatabase(a.dbHelper))
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

// Shutdown stops the background jobs
func (a *App) Shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
