package rest

import (
	"encoding/json"
	"net/http"
)

func (rs *restServer) buildRoutes() []Route {

	routes := RestRequestRoutes{}

	routes.AddToRoutes(rs.basicRoutes())
	if rs.metrics != nil {
		routes.AddToRoutes([]Route{{Name: "Metrics", Method: "GET", Pattern: "/metrics", Handler: rs.metrics}})
	}
	if rs.agents != nil {
		routes.AddToRoutes([]Route{{Name: "Agents", Method: "GET", Pattern: "/agents", Handler: http.HandlerFunc(rs.handleAgents)}})
	}

	return routes.Routes()
}

func (rs *restServer) basicRoutes() []Route {
	return []Route{
		{
			Name:    "HealthCheck",
			Method:  "GET",
			Pattern: "/healthz",
			Handler: http.HandlerFunc(rs.handleHealthCheck),
		},
	}
}

func (rs *restServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type agentStatus struct {
	ArrayType string `json:"arrayType"`
	Endpoints string `json:"endpoints"`
	Current   int    `json:"current"`
	Idle      int    `json:"idle"`
	Max       int    `json:"max"`
}

func (rs *restServer) handleAgents(w http.ResponseWriter, r *http.Request) {
	stats := rs.agents.Stats()
	agents := make([]agentStatus, 0, len(stats))
	for _, s := range stats {
		agents = append(agents, agentStatus{
			ArrayType: s.ArrayType,
			Endpoints: s.Endpoints,
			Current:   s.CurrentSize,
			Idle:      s.IdleSize,
			Max:       s.MaxSize,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(agents); err != nil {
		rs.logger.WithError(err).Error("Failed to encode agents")
	}
}
