package discovery

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) ServiceRegister(service *api.AgentServiceRegistration) error {
	return m.Called(service).Error(0)
}

func (m *MockAgent) ServiceDeregister(serviceID string) error {
	return m.Called(serviceID).Error(0)
}

var testApp = config.AppConfig{Name: "erp-backoffice", Env: "test", Port: "8080"}

func TestConsulRegistrar_Register(t *testing.T) {
	agent := new(MockAgent)
	agent.On("ServiceRegister", mock.MatchedBy(func(reg *api.AgentServiceRegistration) bool {
		return reg.ID == "erp-backoffice-10.0.0.5-8080" &&
			reg.Name == "erp-backoffice" &&
			reg.Port == 8080 &&
			reg.Check.HTTP == "http://10.0.0.5:8080/health" &&
			reg.Check.Interval == "15s" &&
			reg.Check.DeregisterCriticalServiceAfter == "1m0s"
	})).Return(nil)
	agent.On("ServiceDeregister", "erp-backoffice-10.0.0.5-8080").Return(nil)

	r, err := NewConsulRegistrarWithAgent(agent, config.DiscoveryConfig{
		ServiceAddress: "10.0.0.5",
		CheckInterval:  15 * time.Second,
	}, testApp, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, r.Register())
	require.NoError(t, r.Deregister())
	agent.AssertExpectations(t)
}

func TestConsulRegistrar_ExplicitServiceID(t *testing.T) {
	r, err := NewConsulRegistrarWithAgent(new(MockAgent), config.DiscoveryConfig{
		ServiceID:      "backoffice-1",
		ServiceAddress: "10.0.0.5",
	}, testApp, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "backoffice-1", r.ServiceID())
}

func TestConsulRegistrar_Errors(t *testing.T) {
	_, err := NewConsulRegistrarWithAgent(new(MockAgent), config.DiscoveryConfig{}, config.AppConfig{Port: "http"}, zap.NewNop())
	assert.Error(t, err)

	agent := new(MockAgent)
	agent.On("ServiceRegister", mock.Anything).Return(errors.New("connection refused"))
	r, err := NewConsulRegistrarWithAgent(agent, config.DiscoveryConfig{ServiceAddress: "10.0.0.5"}, testApp, zap.NewNop())
	require.NoError(t, err)

	err = r.Register()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
