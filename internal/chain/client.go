package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/yolodolo42/fluidctl/internal/logging"
)

// Client manages connections to multiple EVM chains
type Client struct {
	chains  map[string]*ChainConfig
	clients map[string]*ethclient.Client
	mu      sync.RWMutex
}

// NewClient creates a new multi-chain client
func NewClient() *Client {
	return &Client{
		chains:  DefaultChains(),
		clients: make(map[string]*ethclient.Client),
	}
}

// AddChain adds or overrides a chain configuration
func (c *Client) AddChain(name string, config *ChainConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chains[name] = config
}

// SetRPCURLs replaces the RPC endpoints for a chain and drops any cached
// connection so the next call dials the new endpoints.
func (c *Client) SetRPCURLs(name string, urls []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	config, ok := c.chains[name]
	if !ok {
		return fmt.Errorf("unknown chain: %s", name)
	}
	config.RPCURLs = urls

	if client, exists := c.clients[name]; exists {
		client.Close()
		delete(c.clients, name)
	}
	return nil
}

// GetChainConfig returns the configuration for a chain
func (c *Client) GetChainConfig(chainName string) (*ChainConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.chains[chainName]
	if !ok {
		return nil, fmt.Errorf("unknown chain: %s", chainName)
	}
	return config, nil
}

// ListChains returns all configured chains, sorted by name so callers
// serializing the list get stable output.
func (c *Client) ListChains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	chains := make([]string, 0, len(c.chains))
	for name := range c.chains {
		chains = append(chains, name)
	}
	sort.Strings(chains)
	return chains
}

// getClient returns an ethclient for the given chain, creating one if needed.
// Acquires write lock upfront to prevent duplicate connection creation under
// contention. The simpler locking model is preferred over double-checked locking
// since connection creation is not a hot path.
func (c *Client) getClient(chainName string) (*ethclient.Client, *ChainConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	config, configExists := c.chains[chainName]
	if !configExists {
		return nil, nil, fmt.Errorf("unknown chain: %s", chainName)
	}

	// Return cached client if available
	if client, exists := c.clients[chainName]; exists {
		return client, config, nil
	}

	var lastErr error
	for _, rpcURL := range config.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err != nil {
			logging.L().Debug("rpc dial failed", "chain", chainName, "url", rpcURL, "err", err)
			lastErr = err
			continue
		}

		// Verify chain ID
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		chainID, err := client.ChainID(ctx)
		cancel()

		if err != nil {
			client.Close()
			lastErr = err
			continue
		}

		if chainID.Cmp(config.ChainID) != 0 {
			client.Close()
			lastErr = fmt.Errorf("chain ID mismatch: expected %s, got %s", config.ChainID.String(), chainID.String())
			continue
		}

		logging.L().Debug("rpc connected", "chain", chainName, "url", rpcURL)
		c.clients[chainName] = client
		return client, config, nil
	}

	return nil, nil, fmt.Errorf("failed to connect to %s: %w", chainName, lastErr)
}

// GetBalance returns the native token balance for an address on a chain
func (c *Client) GetBalance(ctx context.Context, chainName string, address common.Address) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.BalanceAt(ctx, address, nil)
}

// EstimateGas estimates gas for a transaction
func (c *Client) EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return 0, err
	}

	return client.EstimateGas(ctx, msg)
}

// SuggestGasPrice returns the suggested gas price
func (c *Client) SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.SuggestGasPrice(ctx)
}

// SuggestGasTipCap returns the suggested priority fee (EIP-1559)
func (c *Client) SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.SuggestGasTipCap(ctx)
}

// CallContract executes a contract call (read-only)
func (c *Client) CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.CallContract(ctx, msg, nil)
}

// Close closes all client connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[string]*ethclient.Client)
}
