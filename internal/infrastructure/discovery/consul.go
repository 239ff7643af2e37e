// Package discovery registers the service with Consul so that gateways and
// other back office services can find a healthy instance.
package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Agent is the part of the Consul agent API the registrar uses
type Agent interface {
	ServiceRegister(service *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// ConsulRegistrar registers one service instance with an HTTP health check
// on /health
type ConsulRegistrar struct {
	agent  Agent
	reg    *api.AgentServiceRegistration
	logger *zap.Logger
}

// NewConsulRegistrar connects to the Consul agent named in cfg
func NewConsulRegistrar(cfg config.DiscoveryConfig, app config.AppConfig, logger *zap.Logger) (*ConsulRegistrar, error) {
	consulCfg := api.DefaultConfig()
	if cfg.ConsulAddr != "" {
		consulCfg.Address = cfg.ConsulAddr
	}
	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul at %s: %w", consulCfg.Address, err)
	}
	return NewConsulRegistrarWithAgent(client.Agent(), cfg, app, logger)
}

// NewConsulRegistrarWithAgent builds the registration for an existing agent
func NewConsulRegistrarWithAgent(agent Agent, cfg config.DiscoveryConfig, app config.AppConfig, logger *zap.Logger) (*ConsulRegistrar, error) {
	port, err := strconv.Atoi(app.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid app port %q: %w", app.Port, err)
	}
	address := cfg.ServiceAddress
	if address == "" {
		address = outboundIP()
	}
	id := cfg.ServiceID
	if id == "" {
		id = fmt.Sprintf("%s-%s-%d", app.Name, address, port)
	}
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	deregister := cfg.DeregisterAfter
	if deregister <= 0 {
		deregister = time.Minute
	}

	return &ConsulRegistrar{
		agent: agent,
		reg: &api.AgentServiceRegistration{
			ID:      id,
			Name:    app.Name,
			Port:    port,
			Address: address,
			Tags:    []string{app.Env, "http"},
			Check: &api.AgentServiceCheck{
				HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(address, app.Port)),
				Interval:                       interval.String(),
				Timeout:                        "5s",
				DeregisterCriticalServiceAfter: deregister.String(),
			},
		},
		logger: logger,
	}, nil
}

// ServiceID returns the id the instance is registered under
func (r *ConsulRegistrar) ServiceID() string {
	return r.reg.ID
}

// Register announces the instance
func (r *ConsulRegistrar) Register() error {
	if err := r.agent.ServiceRegister(r.reg); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	r.logger.Info("Registered with Consul",
		zap.String("service", r.reg.Name),
		zap.String("service_id", r.reg.ID),
		zap.String("address", net.JoinHostPort(r.reg.Address, strconv.Itoa(r.reg.Port))),
	)
	return nil
}

// Deregister removes the instance
func (r *ConsulRegistrar) Deregister() error {
	if err := r.agent.ServiceDeregister(r.reg.ID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	r.logger.Info("Deregistered from Consul", zap.String("service_id", r.reg.ID))
	return nil
}

// outboundIP is the local address of the preferred route. No packet is sent.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
