// Package api pkg/api/server.go exposes the HTTP surface: device
// discovery and listing, traffic sampling, usage sessions, speed tests,
// and bulk purges. Route paths and JSON keys are the existing wire
// contract and must not change.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
	"github.com/carverauto/lanwatch/pkg/sessions"
	"github.com/carverauto/lanwatch/pkg/speed"
	"github.com/carverauto/lanwatch/pkg/traffic"
)

// Server routes HTTP requests to the domain components.
type Server struct {
	router   *mux.Router
	host     netinfo.HostInfo
	registry *registry.Registry
	scan     *registry.NetworkScan
	traffic  *traffic.Sampler
	sessions *sessions.Accountant
	speed    *speed.Recorder
}

// NewServer builds the router over the given components.
func NewServer(
	host netinfo.HostInfo,
	reg *registry.Registry,
	networkScan *registry.NetworkScan,
	sampler *traffic.Sampler,
	accountant *sessions.Accountant,
	recorder *speed.Recorder,
) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		host:     host,
		registry: reg,
		scan:     networkScan,
		traffic:  sampler,
		sessions: accountant,
		speed:    recorder,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	s.router.HandleFunc("/", s.getHome).Methods("GET")
	s.router.HandleFunc("/ping", s.getPing).Methods("GET")
	s.router.HandleFunc("/maquina", s.getLocalMachine).Methods("GET")

	s.router.HandleFunc("/devices", s.getScan).Methods("GET")
	s.router.HandleFunc("/devices/db", s.getAllDevices).Methods("GET")
	s.router.HandleFunc("/dispositivos/rede", s.getSubnetDevices).Methods("GET")

	s.router.HandleFunc("/speedtest", s.getSpeedtest).Methods("GET")
	s.router.HandleFunc("/speedtest/historico", s.getSpeedHistory).Methods("GET")

	s.router.HandleFunc("/trafego", s.getTrafficSample).Methods("GET")
	s.router.HandleFunc("/trafego/historico", s.getTrafficHistory).Methods("GET")

	s.router.HandleFunc("/trafego/sessao/iniciar", s.postSessionStart).Methods("POST")
	s.router.HandleFunc("/trafego/sessao/finalizar", s.postSessionStop).Methods("POST")
	s.router.HandleFunc("/trafego/sessoes", s.getSessions).Methods("GET")
	s.router.HandleFunc("/trafego/sessoes/dispositivo", s.getLocalSessions).Methods("GET")

	s.router.HandleFunc("/deletar/dispositivos", s.deleteDevices).Methods("DELETE")
	s.router.HandleFunc("/deletar/sessoes", s.deleteSessions).Methods("DELETE")
	s.router.HandleFunc("/deletar/speedtest", s.deleteSpeedHistory).Methods("DELETE")
	s.router.HandleFunc("/deletar/trafego", s.deleteTrafficHistory).Methods("DELETE")
}

// Router returns the configured handler for the HTTP server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) getHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Local Network Monitoring API",
	})
}

func (s *Server) getPing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "API running",
	})
}

func (s *Server) getLocalMachine(w http.ResponseWriter, _ *http.Request) {
	ip, err := s.host.LocalIP()
	if err != nil {
		writeError(w, http.StatusBadRequest, "local IP not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ip":       ip,
		"mac":      s.host.LocalMAC(ip),
		"hostname": s.host.Hostname(ip),
	})
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	devices, err := s.scan.Run(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"dispositivos": devices})
}

func (s *Server) getAllDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := s.registry.ListAll()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"dispositivos": devices})
}

func (s *Server) getSubnetDevices(w http.ResponseWriter, _ *http.Request) {
	ip, err := s.host.LocalIP()
	if err != nil {
		writeError(w, http.StatusBadRequest, "local IP not found")
		return
	}

	devices, err := s.registry.ListSubnet(netinfo.SubnetPrefix(ip))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"dispositivos": devices})
}

func (s *Server) getSpeedtest(w http.ResponseWriter, r *http.Request) {
	result, err := s.speed.Run(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"velocidade": result})
}

func (s *Server) getSpeedHistory(w http.ResponseWriter, _ *http.Request) {
	history, err := s.speed.History()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"historico": history})
}

func (s *Server) getTrafficSample(w http.ResponseWriter, _ *http.Request) {
	reading, err := s.traffic.Sample()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"trafego": reading})
}

func (s *Server) getTrafficHistory(w http.ResponseWriter, _ *http.Request) {
	history, err := s.traffic.History()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"historico": history})
}

func (s *Server) postSessionStart(w http.ResponseWriter, _ *http.Request) {
	receipt, err := s.sessions.Start()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		*sessions.StartReceipt
	}{"session started", receipt})
}

func (s *Server) postSessionStop(w http.ResponseWriter, _ *http.Request) {
	receipt, err := s.sessions.Stop()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		*sessions.StopReceipt
	}{"session finished", receipt})
}

func (s *Server) getSessions(w http.ResponseWriter, _ *http.Request) {
	list, err := s.sessions.List()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessoes": list})
}

func (s *Server) getLocalSessions(w http.ResponseWriter, _ *http.Request) {
	list, err := s.sessions.ListLocal()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessoes": list})
}

func (s *Server) deleteDevices(w http.ResponseWriter, _ *http.Request) {
	ip, err := s.host.LocalIP()
	if err != nil {
		writeError(w, http.StatusBadRequest, "local IP not found")
		return
	}

	if err := s.registry.PurgeSubnet(netinfo.SubnetPrefix(ip)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensagem": "devices deleted"})
}

func (s *Server) deleteSessions(w http.ResponseWriter, _ *http.Request) {
	if err := s.sessions.Purge(); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensagem": "sessions deleted"})
}

func (s *Server) deleteSpeedHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.speed.Purge(); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensagem": "speed test history deleted"})
}

func (s *Server) deleteTrafficHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.traffic.Purge(); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensagem": "traffic history deleted"})
}

// writeDomainError maps component errors onto the status codes the wire
// contract uses: 400 for identity and session-state problems, 404 for
// missing devices, 500 for storage and measurement failures.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNoIdentity),
		errors.Is(err, sessions.ErrSessionActive),
		errors.Is(err, sessions.ErrNoActiveSession):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("api: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"erro": message})
}
