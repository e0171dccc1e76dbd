// Command planner-server exposes the planner over a single JSON endpoint,
// POST /plan, in the teacher's bare net/http.ServeMux + CORS-middleware
// shape (SPEC_FULL.md §2.5: a single-route API doesn't warrant a router
// library).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"stripsplan"
	"stripsplan/internal/ground"
	"stripsplan/internal/obslog"
	"stripsplan/internal/search"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type planRequest struct {
	Domain    string `json:"domain"`
	Problem   string `json:"problem"`
	Backend   string `json:"backend,omitempty"`
	Variant   string `json:"variant,omitempty"`
	Heuristic string `json:"heuristic,omitempty"`
}

type planResponse struct {
	Status     string   `json:"status"`
	Cost       int64    `json:"cost,omitempty"`
	Operators  []string `json:"operators,omitempty"`
	Expansions int64    `json:"expansions"`
}

func handlePlan(log *obslog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req planRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Domain == "" || req.Problem == "" {
			writeError(w, http.StatusBadRequest, "missing field: domain or problem")
			return
		}

		gcfg := ground.DefaultConfig()
		gcfg.Logger = log
		if req.Backend != "" {
			gcfg.Backend = ground.Backend(req.Backend)
		}

		scfg := search.DefaultConfig()
		scfg.Logger = log
		switch req.Variant {
		case "", "astar":
			scfg.Variant = search.AStar
		case "greedy":
			scfg.Variant = search.Greedy
		case "lazy":
			scfg.Variant = search.Lazy
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown variant %q", req.Variant))
			return
		}
		switch req.Heuristic {
		case "", "goalcount":
			scfg.Heuristic = search.GoalCount{}
		case "blind":
			scfg.Heuristic = search.Blind{}
		case "hmax":
			scfg.Heuristic = search.RelaxedPlanningGraph{Agg: search.AggregateMax}
		case "hadd":
			scfg.Heuristic = search.RelaxedPlanningGraph{Agg: search.AggregateAdd}
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown heuristic %q", req.Heuristic))
			return
		}

		task, plan, status, stats, err := stripsplan.Solution(r.Context(), req.Domain, req.Problem, gcfg, scfg, nil)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		resp := planResponse{}
		if stats != nil {
			resp.Expansions = stats.Expansions
		}
		switch status {
		case stripsplan.StatusFound:
			resp.Status = "found"
			resp.Cost = int64(plan.Cost)
			resp.Operators = make([]string, len(plan.Operators))
			for i, opID := range plan.Operators {
				resp.Operators[i] = task.Operators[opID].Name
			}
		case stripsplan.StatusUnsolvable:
			resp.Status = "unsolvable"
		case stripsplan.StatusAbort:
			resp.Status = "abort"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	verbose := flag.Bool("verbose", false, "enable development-mode structured logging")
	flag.Parse()

	log := obslog.Nop()
	if *verbose {
		if z, err := zap.NewDevelopment(); err == nil {
			log = obslog.New(z)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/plan", handlePlan(log))

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("planner server listening on %s\n", addr)
	srv := &http.Server{Addr: addr, Handler: corsMiddleware(mux)}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(flag.CommandLine.Output(), "server error: %v\n", err)
	}
}
