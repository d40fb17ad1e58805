package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/fluidctl/internal/chain"
	"github.com/yolodolo42/fluidctl/internal/logging"
	"github.com/yolodolo42/fluidctl/internal/tools"
)

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "fluidctl",
		Short: "Protocol adapter exposing lending, vault and dex operations as agent tools",
		Long: `fluidctl maps a lending/vault/dex protocol's contracts to callable tools.

Read tools query on-chain resolver contracts and print JSON; write tools
encode calldata and return it unsigned for an external signer. The same
registry the subcommands use here is what an agent framework embeds.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(verbose)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fluidctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log RPC activity")
	rootCmd.PersistentFlags().String("chain", "ethereum", "Default chain to use")
	_ = viper.BindPFlag("chain", rootCmd.PersistentFlags().Lookup("chain"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".fluidctl")
		if err := os.MkdirAll(configDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Silently ignore missing config file - it's optional
	_ = viper.ReadInConfig()
}

// newChainClient builds a chain client with any RPC overrides from config
// applied (key rpc.<chain>, a list of endpoint URLs).
func newChainClient() *chain.Client {
	client := chain.NewClient()
	for _, name := range client.ListChains() {
		key := "rpc." + name
		if viper.IsSet(key) {
			if urls := viper.GetStringSlice(key); len(urls) > 0 {
				_ = client.SetRPCURLs(name, urls)
			}
		}
	}
	return client
}

func newRegistry() *tools.Registry {
	return tools.NewRegistryWithClient(newChainClient())
}
