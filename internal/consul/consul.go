// Package consul wraps the service registry: every service registers itself
// on startup and resolves its peers by name before making HTTP calls.
package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

func NewClient(address string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	if address != "" {
		cfg.Address = address
	}
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}
	return client, nil
}

// RegisterService announces the service instance to consul.
func RegisterService(client *consulapi.Client, name, address string, port int) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s-%d", name, address, port),
		Name:    name,
		Address: address,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/ping", address, port),
			Interval: "10s",
			Timeout:  "2s",
		},
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("registering %s in consul: %w", name, err)
	}
	return nil
}

// GetServiceAddress resolves one healthy instance of the named service.
func GetServiceAddress(client *consulapi.Client, name string) (string, int, error) {
	services, _, err := client.Health().Service(name, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("querying consul for %s: %w", name, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s", name)
	}
	svc := services[0].Service
	address := svc.Address
	if address == "" {
		address = services[0].Node.Address
	}
	return address, svc.Port, nil
}
