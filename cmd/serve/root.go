package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/rexkv/cmd/util"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/server"
	"github.com/ValentinKolb/rexkv/rpc/transport/tcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	serveCmdConfig = &common.NodeConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start an in-memory node speaking the store protocol",
		Long: `Start an in-memory node speaking the store protocol. The node answers Get, Set and
Gossip(Ping) requests and is meant for local testing of clients. Values are kept
in memory only and are not replicated to the configured members.
The configuration can be set via command line flags or environment variables.
The format of the environment variables is REX_<flag> (e.g. REX_ENDPOINT=0.0.0.0:8000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, common.DefaultSeedAddress, cmdUtil.WrapString("The address on which the node will listen"))

	key = "advertise"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address reported to clients as sender of gossip messages (defaults to the listen address)"))

	key = "members"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Comma-separated list of node addresses reported to clients as cluster members (e.g. 'localhost:8001,localhost:8002')"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Read/write timeout of a request in seconds (0 = no timeout)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the node configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Advertise = viper.GetString("advertise")
	serveCmdConfig.TimeoutSecond = viper.GetInt("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Members = cmdUtil.SplitList(viper.GetString("members"))

	for _, member := range serveCmdConfig.Members {
		if _, _, err := common.SplitNodeAddress(member); err != nil {
			return fmt.Errorf("invalid member: %w", err)
		}
	}
	if serveCmdConfig.Advertise != "" {
		if _, _, err := common.SplitNodeAddress(serveCmdConfig.Advertise); err != nil {
			return fmt.Errorf("invalid advertise address: %w", err)
		}
	}

	return nil
}

// run starts the node and closes it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	node := server.NewRexNode(
		*serveCmdConfig,
		tcp.NewTCPServerTransport(),
		s,
	)
	if err := node.Listen(); err != nil {
		return err
	}
	fmt.Printf("Node listening on %s (advertising %s)\n", node.Addr(), node.AdvertiseAddr())

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		_ = node.Close()
	}()

	return node.Serve()
}
