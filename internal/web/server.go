package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/elys-network/curved/internal/curves"
	"github.com/elys-network/curved/internal/fixedpoint"
	"github.com/elys-network/curved/internal/logger"
	"github.com/elys-network/curved/internal/registry"
	"github.com/elys-network/curved/internal/state"
	"github.com/elys-network/curved/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the curve registry's pricing operations over HTTP/JSON.
type WebServer struct {
	router   *mux.Router
	port     string
	registry *registry.Registry
}

// NewWebServer creates a new web server instance fronting the given registry.
func NewWebServer(port string, reg *registry.Registry) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		registry: reg,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/curves", ws.handleListCurves).Methods("GET")
	api.HandleFunc("/curves/{id}", ws.handleGetCurve).Methods("GET")
	api.HandleFunc("/curves/{id}/preview/deposit", ws.handleQuote(opPreviewDeposit)).Methods("GET")
	api.HandleFunc("/curves/{id}/preview/mint", ws.handleQuote(opPreviewMint)).Methods("GET")
	api.HandleFunc("/curves/{id}/preview/withdraw", ws.handleQuote(opPreviewWithdraw)).Methods("GET")
	api.HandleFunc("/curves/{id}/preview/redeem", ws.handleQuote(opPreviewRedeem)).Methods("GET")
	api.HandleFunc("/curves/{id}/convert/shares", ws.handleQuote(opConvertToShares)).Methods("GET")
	api.HandleFunc("/curves/{id}/convert/assets", ws.handleQuote(opConvertToAssets)).Methods("GET")
	api.HandleFunc("/curves/{id}/price", ws.handlePrice).Methods("GET")
	api.HandleFunc("/quotes", ws.handleGetQuotes).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	return ws.Server().ListenAndServe()
}

// Server returns the configured http.Server, for callers that manage
// shutdown themselves.
func (ws *WebServer) Server() *http.Server {
	return &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handler exposes the router, primarily for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := state.DB != nil && state.TestDBConnection() == nil

	response := map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "curved-bonding-curve-engine",
			"version": "1.0.0",
		},
		"engine_status": map[string]interface{}{
			"registered_curves": ws.registry.Count(),
			"database_healthy":  dbHealthy,
		},
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleListCurves returns every registry entry in id order.
func (ws *WebServer) handleListCurves(w http.ResponseWriter, r *http.Request) {
	infos := ws.registry.List()
	response := map[string]interface{}{
		"curves": infos,
		"count":  len(infos),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetCurve returns a single registry entry.
func (ws *WebServer) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.curveID(w, r)
	if !ok {
		return
	}
	curve, err := ws.registry.Curve(id)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, types.CurveInfo{
		ID:        id,
		Name:      curve.Name(),
		MaxShares: curve.MaxShares(),
		MaxAssets: curve.MaxAssets(),
	})
}

// quoteOp names a forwarded registry operation and how to invoke it.
type quoteOp struct {
	name string
	// amountParam is "assets" or "shares" depending on the direction.
	amountParam string
	call        func(reg *registry.Registry, id types.CurveID, amount, totalAssets, totalShares fixedpoint.UFixed) (fixedpoint.UFixed, error)
}

var (
	opPreviewDeposit = quoteOp{"preview_deposit", "assets",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.PreviewDeposit(id, amount, ta, ts)
		}}
	opPreviewMint = quoteOp{"preview_mint", "shares",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.PreviewMint(id, amount, ts, ta)
		}}
	opPreviewWithdraw = quoteOp{"preview_withdraw", "assets",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.PreviewWithdraw(id, amount, ta, ts)
		}}
	opPreviewRedeem = quoteOp{"preview_redeem", "shares",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.PreviewRedeem(id, amount, ts, ta)
		}}
	opConvertToShares = quoteOp{"convert_to_shares", "assets",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.ConvertToShares(id, amount, ta, ts)
		}}
	opConvertToAssets = quoteOp{"convert_to_assets", "shares",
		func(reg *registry.Registry, id types.CurveID, amount, ta, ts fixedpoint.UFixed) (fixedpoint.UFixed, error) {
			return reg.ConvertToAssets(id, amount, ts, ta)
		}}
)

// handleQuote builds the handler for one forwarded pricing operation. Query
// params: the operation's amount param plus total_assets and total_shares,
// all 18-decimal strings.
func (ws *WebServer) handleQuote(op quoteOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ws.curveID(w, r)
		if !ok {
			return
		}
		amount, ok := ws.amountParam(w, r, op.amountParam)
		if !ok {
			return
		}
		pool, ok := ws.poolState(w, r)
		if !ok {
			return
		}

		result, err := op.call(ws.registry, id, amount, pool.TotalAssets, pool.TotalShares)
		if err != nil {
			ws.writeEngineError(w, err)
			return
		}

		ws.recordQuote(state.QuoteRecord{
			CurveID:     id,
			Operation:   op.name,
			Amount:      amount,
			TotalAssets: pool.TotalAssets,
			TotalShares: pool.TotalShares,
			Result:      result,
		})

		ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"curve_id":     id,
			"operation":    op.name,
			op.amountParam: amount,
			"total_assets": pool.TotalAssets,
			"total_shares": pool.TotalShares,
			"result":       result,
		})
	}
}

// handlePrice returns the marginal price of one whole share.
func (ws *WebServer) handlePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.curveID(w, r)
	if !ok {
		return
	}
	pool, ok := ws.poolState(w, r)
	if !ok {
		return
	}

	price, err := ws.registry.CurrentPrice(id, pool.TotalShares, pool.TotalAssets)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"curve_id":     id,
		"total_assets": pool.TotalAssets,
		"total_shares": pool.TotalShares,
		"price":        price,
	})
}

// handleGetQuotes returns the recent quote log.
func (ws *WebServer) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	quotes, err := state.GetRecentQuotes(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent quotes")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve quotes")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
		"limit":  limit,
	})
}

// curveID parses the {id} path variable.
func (ws *WebServer) curveID(w http.ResponseWriter, r *http.Request) (types.CurveID, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid curve ID")
		return 0, false
	}
	return types.CurveID(id), true
}

// amountParam parses the operation's amount query parameter.
func (ws *WebServer) amountParam(w http.ResponseWriter, r *http.Request, name string) (fixedpoint.UFixed, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Missing query parameter: "+name)
		return fixedpoint.UFixed{}, false
	}
	amount, err := fixedpoint.Parse(raw)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid "+name+": "+err.Error())
		return fixedpoint.UFixed{}, false
	}
	return amount, true
}

// poolState parses total_assets and total_shares.
func (ws *WebServer) poolState(w http.ResponseWriter, r *http.Request) (types.PoolState, bool) {
	totalAssets, ok := ws.amountParam(w, r, "total_assets")
	if !ok {
		return types.PoolState{}, false
	}
	totalShares, ok := ws.amountParam(w, r, "total_shares")
	if !ok {
		return types.PoolState{}, false
	}
	return types.PoolState{TotalAssets: totalAssets, TotalShares: totalShares}, true
}

// recordQuote appends to the quote log when a database is configured.
func (ws *WebServer) recordQuote(rec state.QuoteRecord) {
	if state.DB == nil {
		return
	}
	if err := state.SaveQuote(rec); err != nil {
		webLogger.Error().Err(err).Msg("Failed to record quote")
	}
}

// writeEngineError maps engine failures to HTTP status codes. Every failure
// carries the violated bound in its message; nothing is swallowed into a
// zero-value response.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrCurveNotFound):
		ws.writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, curves.ErrAssetsExceedTotal),
		errors.Is(err, curves.ErrSharesExceedTotal),
		errors.Is(err, curves.ErrAssetsOverflowMax),
		errors.Is(err, curves.ErrSharesOverflowMax),
		errors.Is(err, curves.ErrDomainExceeded),
		errors.Is(err, fixedpoint.ErrOverflow),
		errors.Is(err, fixedpoint.ErrNegativeResult),
		errors.Is(err, fixedpoint.ErrDivideByZero):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		webLogger.Error().Err(err).Msg("Unexpected engine error")
		ws.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
