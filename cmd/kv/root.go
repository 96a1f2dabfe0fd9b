package kv

import (
	"github.com/ValentinKolb/rexkv/cmd/util"
	"github.com/ValentinKolb/rexkv/rpc/client"
	"github.com/ValentinKolb/rexkv/rpc/transport/tcp"
	"github.com/spf13/cobra"
)

var (
	rpcStore client.IRPCStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(membersCmd)
}

// setupKVClient initializes the RPC store client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	// Create the KV store client, discovery runs against the seed node
	rpcStore, err = client.NewRPCStore(
		config,
		nil,
		tcp.NewTCPClientTransport(config),
		s,
	)

	return err
}
