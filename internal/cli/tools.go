package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/yolodolo42/fluidctl/internal/chain"
	"github.com/yolodolo42/fluidctl/internal/tools"
	"github.com/yolodolo42/fluidctl/internal/tx"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered agent tools",
	Long:  `Print every tool the adapter exposes, optionally with JSON schemas.`,
	RunE:  runTools,
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-input]",
	Short: "Invoke a tool directly",
	Long: `Invoke a tool with a JSON argument and print its result.

This is the manual harness for what an agent framework does
programmatically, e.g.:

  fluidctl call get_lending_markets '{"chain": "ethereum"}'
  fluidctl call deposit '{"chain": "ethereum", "market": "fUSDC", "amount": "100", "receiver": "0x..."}'

With --estimate-gas, a write tool's unsigned transaction is followed by a
gas estimate and the chain's suggested fees. Pass --from with the signer
address when the call depends on the sender's balances or approvals.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)

	toolsCmd.Flags().Bool("schemas", false, "Include input schemas")
	callCmd.Flags().Duration("timeout", 30*time.Second, "Per-call timeout")
	callCmd.Flags().Bool("estimate-gas", false, "Estimate gas and fees for a returned unsigned transaction")
	callCmd.Flags().String("from", "", "Sender address used for gas estimation")
}

func runTools(cmd *cobra.Command, args []string) error {
	showSchemas, _ := cmd.Flags().GetBool("schemas")

	registry := newRegistry()
	defer registry.Close()

	for _, tool := range registry.Tools() {
		fmt.Println(styled(NameStyle, tool.Name))
		fmt.Println("  " + styled(DimStyle, tool.Description))
		if showSchemas {
			var pretty json.RawMessage = tool.InputSchema
			out, err := json.MarshalIndent(pretty, "  ", "  ")
			if err == nil {
				fmt.Println("  " + string(out))
			}
		}
	}
	return nil
}

func runCall(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	estimate, _ := cmd.Flags().GetBool("estimate-gas")
	from, _ := cmd.Flags().GetString("from")

	input := json.RawMessage(`{}`)
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("input is not valid JSON: %s", args[1])
		}
		input = json.RawMessage(args[1])
	}

	client := newChainClient()
	registry := tools.NewRegistryWithClient(client)
	defer registry.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := registry.Execute(ctx, args[0], input)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Println(result)

	if estimate {
		req, ok := decodeTxRequest(result)
		if !ok {
			return fmt.Errorf("--estimate-gas: %s did not return an unsigned transaction", args[0])
		}
		return printGasEstimate(ctx, client, req, from)
	}
	return nil
}

// decodeTxRequest recovers an unsigned-transaction envelope from a tool's
// JSON output. Read-tool output unmarshals but leaves the envelope fields
// empty, so presence of action, to and data is the discriminator.
func decodeTxRequest(result string) (*tx.Request, bool) {
	var req tx.Request
	if err := json.Unmarshal([]byte(result), &req); err != nil {
		return nil, false
	}
	if req.Action == "" || req.To == "" || req.Data == "" {
		return nil, false
	}
	return &req, true
}

func printGasEstimate(ctx context.Context, client *chain.Client, req *tx.Request, from string) error {
	var sender common.Address
	if from != "" {
		if !common.IsHexAddress(from) {
			return fmt.Errorf("invalid from address: %q", from)
		}
		sender = common.HexToAddress(from)
	}

	msg, err := req.CallMsg(sender)
	if err != nil {
		return err
	}

	gas, err := client.EstimateGas(ctx, req.Chain, msg)
	if err != nil {
		return fmt.Errorf("gas estimation failed: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx, req.Chain)
	if err != nil {
		return fmt.Errorf("gas price query failed: %w", err)
	}
	tipCap, err := client.SuggestGasTipCap(ctx, req.Chain)
	if err != nil {
		return fmt.Errorf("gas tip query failed: %w", err)
	}

	fmt.Println(styled(HeaderStyle, "Gas estimate"))
	fmt.Printf("  gas limit:  %d\n", gas)
	fmt.Printf("  gas price:  %s gwei\n", weiToGwei(gasPrice))
	fmt.Printf("  tip cap:    %s gwei\n", weiToGwei(tipCap))
	return nil
}

func weiToGwei(wei *big.Int) string {
	gwei := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9))
	return gwei.Text('f', 2)
}
