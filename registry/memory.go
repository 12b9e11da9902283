package registry

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var _ Service = (*MemoryService)(nil)

// MemoryService is an in-memory Service used by tests and short-lived tools.
type MemoryService struct {
	mu      sync.Mutex
	configs map[common.Address]*Config

	// Transfers records every ownership transfer write-back, in order.
	Transfers []TransferOwnerRequest
}

// NewMemoryService returns an empty MemoryService.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		configs: make(map[common.Address]*Config),
	}
}

// Seed pre-populates the configuration for a signer.
func (s *MemoryService) Seed(signer common.Address, cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[signer] = &cfg
}

func (s *MemoryService) GetConfig(_ context.Context, signer common.Address) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[signer]
	if !ok {
		return &Config{}, nil
	}

	out := *cfg
	out.DeployedAddresses = append([]common.Address(nil), cfg.DeployedAddresses...)

	return &out, nil
}

func (s *MemoryService) SetFactoryAddress(_ context.Context, req SetFactoryRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensure(req.Signer)
	addr := req.FactoryAddress
	cfg.FactoryAddress = &addr

	return nil
}

func (s *MemoryService) SetContractAddress(_ context.Context, req SetContractRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensure(req.Signer)
	for _, a := range cfg.DeployedAddresses {
		if a == req.ContractAddress {
			return nil
		}
	}
	cfg.DeployedAddresses = append(cfg.DeployedAddresses, req.ContractAddress)

	return nil
}

func (s *MemoryService) TransferContractOwner(_ context.Context, req TransferOwnerRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Transfers = append(s.Transfers, req)

	return nil
}

func (s *MemoryService) ensure(signer common.Address) *Config {
	cfg, ok := s.configs[signer]
	if !ok {
		cfg = &Config{}
		s.configs[signer] = cfg
	}

	return cfg
}
