package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dropservice "mintworks/contexts/issuance/drop-service"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	drop   dropservice.Module
}

func New(
	drop dropservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		drop:   drop,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/drop/collection", s.handleDropCollection)
	s.mux.HandleFunc("GET /v1/drop/mint-cost/{address}", s.handleDropMintCost)
	s.mux.HandleFunc("GET /v1/drop/members/{address}", s.handleDropIsMember)
	s.mux.HandleFunc("GET /v1/drop/wallets/{address}", s.handleDropWallet)
	s.mux.HandleFunc("GET /v1/drop/pending/{address}", s.handleDropPending)
	s.mux.HandleFunc("GET /v1/drop/accounts/{address}", s.handleDropBuyerAccount)

	s.mux.HandleFunc("POST /v1/drop/mint", s.handleDropMint)
	s.mux.HandleFunc("POST /v1/drop/claim", s.handleDropClaim)
	s.mux.HandleFunc("POST /v1/drop/withdraw", s.handleDropWithdraw)
	s.mux.HandleFunc("POST /v1/drop/withdraw-payments", s.handleDropWithdrawPayments)

	s.mux.HandleFunc("POST /v1/drop/admin/reserve-mint", s.handleDropReserveMint)
	s.mux.HandleFunc("PATCH /v1/drop/admin/settings", s.handleDropUpdateSettings)
	s.mux.HandleFunc("POST /v1/drop/admin/whitelist", s.handleDropUpdateWhitelist)
	s.mux.HandleFunc("POST /v1/drop/admin/ownership", s.handleDropTransferOwnership)
	s.mux.HandleFunc("POST /v1/drop/admin/max-supply", s.handleDropRaiseMaxSupply)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
