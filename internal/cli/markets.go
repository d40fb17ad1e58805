package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/fluidctl/internal/lending"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Show lending markets on a chain",
	Long:  `Display every lending market with exchange price, supply APR and totals.`,
	RunE:  runMarkets,
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}

func runMarkets(cmd *cobra.Command, args []string) error {
	chainName := viper.GetString("chain")

	client := newChainClient()
	defer client.Close()

	svc := lending.NewService(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	markets, err := svc.Markets(ctx, chainName)
	if err != nil {
		return err
	}

	fmt.Println(styled(HeaderStyle, fmt.Sprintf("Lending markets on %s", chainName)))
	for _, m := range markets {
		fmt.Printf("%s  supply %s  rewards %s  total %s %s\n",
			styled(NameStyle, m.Symbol), m.SupplyAPR, m.RewardsAPR, m.TotalAssets, m.UnderlyingSymbol)
		fmt.Println("  " + styled(DimStyle, m.FToken))
	}
	return nil
}
