package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"
	"github.com/segmentio/ksuid"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/contracts"
)

var _ Service = (*FileService)(nil)

// FileService stores registry records in a local TOML file. It serves
// local development and single-operator setups where no hosted configuration
// service exists. Records are keyed by signer address.
type FileService struct {
	mu   sync.Mutex
	path string
}

// fileRecord is the TOML shape of one signer's registry entry.
type fileRecord struct {
	ID             string          `toml:"id"`
	Signer         string          `toml:"signer"`
	Family         string          `toml:"family,omitempty"`
	FactoryAddress string          `toml:"factory_address,omitempty"`
	MetadataURL    string          `toml:"metadata_url,omitempty"`
	Contracts      []string        `toml:"contracts,omitempty"`
	Owners         []ownerTransfer `toml:"owner_transfers,omitempty"`
	Network        *chain.Endpoint `toml:"network,omitempty"`
}

type ownerTransfer struct {
	Contract string `toml:"contract"`
	NewOwner string `toml:"new_owner"`
}

type fileDocument struct {
	Records []fileRecord `toml:"records"`
}

// NewFileService creates a file-backed registry at path. The file is created
// lazily on the first write.
func NewFileService(path string) (*FileService, error) {
	if path == "" {
		return nil, errors.New("registry file path is required")
	}

	return &FileService{path: path}, nil
}

func (s *FileService) GetConfig(_ context.Context, signer common.Address) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	rec := findRecord(doc, signer)
	if rec == nil {
		return &Config{}, nil
	}

	cfg := &Config{
		Network:     rec.Network,
		MetadataURL: rec.MetadataURL,
	}
	if rec.FactoryAddress != "" {
		addr := common.HexToAddress(rec.FactoryAddress)
		cfg.FactoryAddress = &addr
	}
	for _, a := range rec.Contracts {
		cfg.DeployedAddresses = append(cfg.DeployedAddresses, common.HexToAddress(a))
	}

	return cfg, nil
}

func (s *FileService) SetFactoryAddress(_ context.Context, req SetFactoryRequest) error {
	return s.update(req.Signer, req.Family, func(rec *fileRecord) {
		rec.FactoryAddress = req.FactoryAddress.Hex()
	})
}

func (s *FileService) SetContractAddress(_ context.Context, req SetContractRequest) error {
	return s.update(req.Signer, req.Family, func(rec *fileRecord) {
		addr := req.ContractAddress.Hex()
		for _, existing := range rec.Contracts {
			if existing == addr {
				return
			}
		}
		rec.Contracts = append(rec.Contracts, addr)
	})
}

func (s *FileService) TransferContractOwner(_ context.Context, req TransferOwnerRequest) error {
	return s.update(req.Signer, req.Family, func(rec *fileRecord) {
		rec.Owners = append(rec.Owners, ownerTransfer{
			Contract: req.ContractAddress.Hex(),
			NewOwner: req.NewOwner.Hex(),
		})
	})
}

// update applies fn to the signer's record, creating it when absent, and
// persists the document.
func (s *FileService) update(signer common.Address, family contracts.Family, fn func(*fileRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	rec := findRecord(doc, signer)
	if rec == nil {
		doc.Records = append(doc.Records, fileRecord{
			ID:     ksuid.New().String(),
			Signer: signer.Hex(),
			Family: string(family),
		})
		rec = &doc.Records[len(doc.Records)-1]
	}
	fn(rec)

	return s.save(doc)
}

func (s *FileService) load() (*fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &fileDocument{}, nil
		}

		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var doc fileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	return &doc, nil
}

func (s *FileService) save(doc *fileDocument) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode registry file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func findRecord(doc *fileDocument, signer common.Address) *fileRecord {
	for i := range doc.Records {
		if common.HexToAddress(doc.Records[i].Signer) == signer {
			return &doc.Records[i]
		}
	}

	return nil
}
