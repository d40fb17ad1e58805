package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/fluidctl/internal/vault"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show vault borrow positions for an address",
	RunE:  runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)

	positionsCmd.Flags().String("address", "", "Position owner address")
	_ = positionsCmd.MarkFlagRequired("address")
}

func runPositions(cmd *cobra.Command, args []string) error {
	chainName := viper.GetString("chain")
	addressFlag, _ := cmd.Flags().GetString("address")

	if !common.IsHexAddress(addressFlag) {
		return fmt.Errorf("invalid address: %s", addressFlag)
	}
	owner := common.HexToAddress(addressFlag)

	client := newChainClient()
	defer client.Close()

	svc := vault.NewService(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	positions, err := svc.Positions(ctx, chainName, owner)
	if err != nil {
		return err
	}

	if len(positions) == 0 {
		fmt.Println(styled(DimStyle, "No vault positions found."))
		return nil
	}

	fmt.Println(styled(HeaderStyle, fmt.Sprintf("Vault positions on %s for %s", chainName, owner.Hex())))
	for _, p := range positions {
		health := p.HealthFactor
		if health != "none" {
			health = "health " + health
		} else {
			health = styled(DimStyle, "no debt")
		}
		fmt.Printf("#%s %s  collateral %s  debt %s  %s\n",
			p.NftID, styled(NameStyle, p.Vault), p.Collateral, p.Debt, health)
	}
	return nil
}
